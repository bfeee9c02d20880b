package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/domain"
)

// CreateVersionRequest is the request body for POST /api/events/{eventID}/versions.
// The version is created inactive with the next version number of the event.
type CreateVersionRequest struct {
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	HallDimensions json.RawMessage `json:"hall_dimensions" swaggertype:"object"`
}

// Validate implements Validator.
func (req CreateVersionRequest) Validate() []string {
	var errs []string
	errs = checkLength(errs, "name", req.Name, 1, 100)
	if len(req.HallDimensions) > 0 && string(req.HallDimensions) != "null" {
		var obj map[string]any
		if json.Unmarshal(req.HallDimensions, &obj) != nil || obj == nil {
			errs = append(errs, "hall_dimensions: must be an object")
		}
	}
	return errs
}

// DuplicateVersionRequest is the optional body for POST /api/versions/{versionID}/duplicate.
// Without a name the copy is called "<source name> (Copy)".
type DuplicateVersionRequest struct {
	Name *string `json:"name"`
}

// Validate implements Validator.
func (req DuplicateVersionRequest) Validate() []string {
	if req.Name != nil && *req.Name != "" {
		return checkLength(nil, "name", *req.Name, 1, 100)
	}
	return nil
}

type VersionController struct {
	Logger  *slog.Logger
	Service domain.VersionService
}

func NewVersionController(logger *slog.Logger, svc domain.VersionService) *VersionController {
	return &VersionController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a seating version
// @Tags versions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateVersionRequest true "Version data"
// @Success 201 {object} helpers.APIResponse{data=domain.Version}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/versions [post]
func (c *VersionController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateVersionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hall := req.HallDimensions
	if string(hall) == "null" {
		hall = nil
	}
	v := domain.NewVersion(eventID, strings.TrimSpace(req.Name), req.Description, hall, userID, time.Now())
	if err := c.Service.Create(r.Context(), userID, v); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, v, "Version created successfully")
}

// ListByEvent godoc
// @Summary List versions of an event
// @Description Newest version first, each with its table count.
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Version}
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/versions [get]
func (c *VersionController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	versions, err := c.Service.ListByEvent(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if versions == nil {
		versions = []*domain.Version{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, versions)
}

// Get godoc
// @Summary Get a version
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.Version}
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID} [get]
func (c *VersionController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	v, err := c.Service.Get(r.Context(), versionID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, v)
}

// Update godoc
// @Summary Update a version
// @Description is_active=true activates the version; is_active=false is rejected.
// @Tags versions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Param body body domain.VersionUpdate true "Fields to change"
// @Success 200 {object} helpers.APIResponse{data=domain.Version}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID} [patch]
func (c *VersionController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	var upd domain.VersionUpdate
	if !helpers.DecodeAndValidate(w, r, &upd) {
		return
	}
	v, err := c.Service.Update(r.Context(), versionID, userID, upd)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, v)
}

// Activate godoc
// @Summary Activate a version
// @Description Deactivates every other version of the event in the same transaction.
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.Version}
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID}/activate [post]
func (c *VersionController) Activate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	v, err := c.Service.Activate(r.Context(), versionID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, v)
}

// Duplicate godoc
// @Summary Duplicate a version
// @Description Copies the version and its tables, not its assignments. The copy is inactive.
// @Tags versions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Param body body DuplicateVersionRequest false "Optional name for the copy"
// @Success 201 {object} helpers.APIResponse{data=domain.Version}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID}/duplicate [post]
func (c *VersionController) Duplicate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	var req DuplicateVersionRequest
	if r.ContentLength != 0 && !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	v, err := c.Service.Duplicate(r.Context(), versionID, userID, req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, v, "Version duplicated successfully")
}

// Delete godoc
// @Summary Delete a version
// @Description Fails for the active version or one that still has tables. Requires admin.
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID} [delete]
func (c *VersionController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), versionID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusOK, "Version deleted successfully")
}
