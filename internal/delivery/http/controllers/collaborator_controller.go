package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/domain"
)

const collaboratorRoleMessage = "role: must be one of admin, editor, viewer"

// InviteCollaboratorRequest is the request body for POST /api/events/{eventID}/collaborators.
// The invitee must already have an account.
type InviteCollaboratorRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Validate implements Validator.
func (req InviteCollaboratorRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email: is required")
	} else {
		errs = checkEmail(errs, "email", req.Email)
	}
	if !req.Role.IsCollaboratorRole() {
		errs = append(errs, collaboratorRoleMessage)
	}
	return errs
}

// UpdateCollaboratorRequest is the request body for PATCH /api/collaborators/{collaboratorID}
type UpdateCollaboratorRequest struct {
	Role domain.Role `json:"role"`
}

// Validate implements Validator.
func (req UpdateCollaboratorRequest) Validate() []string {
	if !req.Role.IsCollaboratorRole() {
		return []string{collaboratorRoleMessage}
	}
	return nil
}

type CollaboratorController struct {
	Logger  *slog.Logger
	Service domain.CollaboratorService
}

func NewCollaboratorController(logger *slog.Logger, svc domain.CollaboratorService) *CollaboratorController {
	return &CollaboratorController{
		Logger:  logger,
		Service: svc,
	}
}

// Invite godoc
// @Summary Invite a collaborator
// @Description Grant an existing user a role on the event and email them. A previously removed collaborator is reactivated with the new role. Requires admin.
// @Tags collaborators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body InviteCollaboratorRequest true "Invitee and role"
// @Success 201 {object} helpers.APIResponse{data=domain.Collaborator}
// @Failure 400 {object} helpers.APIResponse "already a collaborator, owner invited, or validation"
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "event or user not found"
// @Router /events/{eventID}/collaborators [post]
func (c *CollaboratorController) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req InviteCollaboratorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	collab, err := c.Service.Invite(r.Context(), eventID, userID, strings.ToLower(strings.TrimSpace(req.Email)), req.Role)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, collab, "Collaborator invited successfully")
}

// ListByEvent godoc
// @Summary List collaborators of an event
// @Tags collaborators
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Collaborator}
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/collaborators [get]
func (c *CollaboratorController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	collabs, err := c.Service.ListByEvent(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if collabs == nil {
		collabs = []*domain.Collaborator{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collabs)
}

// ListMine godoc
// @Summary List my collaborations
// @Description Events the caller was invited to, with an event summary.
// @Tags collaborators
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]domain.Collaboration}
// @Router /collaborators/mine [get]
func (c *CollaboratorController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	mine, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if mine == nil {
		mine = []*domain.Collaboration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, mine)
}

// Get godoc
// @Summary Get a collaborator
// @Tags collaborators
// @Produce json
// @Security BearerAuth
// @Param collaboratorID path string true "Collaborator ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.Collaborator}
// @Failure 404 {object} helpers.APIResponse
// @Router /collaborators/{collaboratorID} [get]
func (c *CollaboratorController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "collaboratorID")
	if !ok {
		return
	}
	collab, err := c.Service.Get(r.Context(), id, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collab)
}

// UpdateRole godoc
// @Summary Change a collaborator's role
// @Tags collaborators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collaboratorID path string true "Collaborator ID (UUID)"
// @Param body body UpdateCollaboratorRequest true "New role"
// @Success 200 {object} helpers.APIResponse{data=domain.Collaborator}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /collaborators/{collaboratorID} [patch]
func (c *CollaboratorController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "collaboratorID")
	if !ok {
		return
	}
	var req UpdateCollaboratorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	collab, err := c.Service.UpdateRole(r.Context(), id, userID, req.Role)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collab)
}

// Remove godoc
// @Summary Remove a collaborator
// @Description Admins may remove anyone; a collaborator may always remove themselves.
// @Tags collaborators
// @Produce json
// @Security BearerAuth
// @Param collaboratorID path string true "Collaborator ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /collaborators/{collaboratorID} [delete]
func (c *CollaboratorController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "collaboratorID")
	if !ok {
		return
	}
	if err := c.Service.Remove(r.Context(), id, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusOK, "Collaborator removed successfully")
}
