package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/domain"
)

// CreateGroupRequest is the request body for POST /api/events/{eventID}/groups.
type CreateGroupRequest struct {
	Name              string                    `json:"name"`
	Color             *string                   `json:"color"`
	SeatingPreference *domain.SeatingPreference `json:"seating_preference"`
	PreferAdjacent    bool                      `json:"prefer_adjacent"`
	Priority          *domain.GroupPriority     `json:"priority"`
	Notes             *string                   `json:"notes"`
}

// Validate implements Validator.
func (req CreateGroupRequest) Validate() []string {
	var errs []string
	errs = checkLength(errs, "name", req.Name, 1, 100)
	if req.Color != nil && strings.TrimSpace(*req.Color) == "" {
		errs = append(errs, "color: cannot be empty")
	}
	if req.SeatingPreference != nil && !req.SeatingPreference.Valid() {
		errs = append(errs, "seating_preference: must be one of no_preference, together, separate, vip")
	}
	if req.Priority != nil && !req.Priority.Valid() {
		errs = append(errs, "priority: must be one of low, medium, high")
	}
	return errs
}

func (req CreateGroupRequest) toGroup(eventID string) *domain.Group {
	g := domain.NewGroup(eventID, strings.TrimSpace(req.Name), time.Now())
	if req.Color != nil {
		g.Color = *req.Color
	}
	if req.SeatingPreference != nil {
		g.SeatingPreference = *req.SeatingPreference
	}
	g.PreferAdjacent = req.PreferAdjacent
	if req.Priority != nil {
		g.Priority = *req.Priority
	}
	g.Notes = req.Notes
	return g
}

type GroupController struct {
	Logger  *slog.Logger
	Service domain.GroupService
}

func NewGroupController(logger *slog.Logger, svc domain.GroupService) *GroupController {
	return &GroupController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a group
// @Description Defaults: color blue, seating_preference no_preference, priority medium. Requires editor.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateGroupRequest true "Group data"
// @Success 201 {object} helpers.APIResponse{data=domain.Group}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/groups [post]
func (c *GroupController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateGroupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	group := req.toGroup(eventID)
	if err := c.Service.Create(r.Context(), userID, group); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, group, "Group created successfully")
}

// ListByEvent godoc
// @Summary List groups of an event
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Group}
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/groups [get]
func (c *GroupController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	groups, err := c.Service.ListByEvent(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, groups)
}

// Get godoc
// @Summary Get a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.Group}
// @Failure 404 {object} helpers.APIResponse
// @Router /groups/{groupID} [get]
func (c *GroupController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	groupID, ok := helpers.PathID(w, r, "groupID")
	if !ok {
		return
	}
	group, err := c.Service.Get(r.Context(), groupID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, group)
}

// Update godoc
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param body body domain.GroupUpdate true "Fields to change"
// @Success 200 {object} helpers.APIResponse{data=domain.Group}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /groups/{groupID} [patch]
func (c *GroupController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	groupID, ok := helpers.PathID(w, r, "groupID")
	if !ok {
		return
	}
	var upd domain.GroupUpdate
	if !helpers.DecodeAndValidate(w, r, &upd) {
		return
	}
	group, err := c.Service.Update(r.Context(), groupID, userID, upd)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, group)
}

// Delete godoc
// @Summary Delete a group
// @Description Fails while any guest still belongs to the group. Requires admin.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "group still has guests"
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /groups/{groupID} [delete]
func (c *GroupController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	groupID, ok := helpers.PathID(w, r, "groupID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), groupID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusOK, "Group deleted successfully")
}

// ListGuests godoc
// @Summary List guests in a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Guest}
// @Failure 404 {object} helpers.APIResponse
// @Router /groups/{groupID}/guests [get]
func (c *GroupController) ListGuests(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	groupID, ok := helpers.PathID(w, r, "groupID")
	if !ok {
		return
	}
	guests, err := c.Service.ListGuests(r.Context(), groupID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guests)
}
