package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/domain"
)

// CreateGuestRequest is the request body for POST /api/events/{eventID}/guests.
// guest_type defaults to primary and rsvp_status to pending.
type CreateGuestRequest struct {
	Name                string            `json:"name"`
	LastName            *string           `json:"last_name"`
	Email               *string           `json:"email"`
	Phone               *string           `json:"phone"`
	GuestType           domain.GuestType  `json:"guest_type"`
	PrimaryGuestID      *string           `json:"primary_guest_id"`
	DietaryRestrictions []string          `json:"dietary_restrictions"`
	Allergies           *string           `json:"allergies"`
	CurrentGroup        *string           `json:"current_group"`
	Side                *string           `json:"side"`
	RSVPStatus          domain.RSVPStatus `json:"rsvp_status"`
	Approved            bool              `json:"approved"`
	Notes               *string           `json:"notes"`
}

// Validate implements Validator.
func (req CreateGuestRequest) Validate() []string {
	var errs []string
	errs = checkLength(errs, "name", req.Name, 1, 100)
	errs = checkOptionalLength(errs, "last_name", req.LastName, 100)
	if req.Email != nil && *req.Email != "" {
		errs = checkEmail(errs, "email", *req.Email)
	}
	errs = checkOptionalLength(errs, "phone", req.Phone, 20)
	if req.GuestType != "" && !req.GuestType.Valid() {
		errs = append(errs, "guest_type: must be one of primary, companion, child")
	}
	errs = helpers.CheckID(errs, "primary_guest_id", req.PrimaryGuestID)
	errs = checkOptionalLength(errs, "allergies", req.Allergies, 500)
	errs = helpers.CheckID(errs, "current_group", req.CurrentGroup)
	errs = checkOptionalLength(errs, "side", req.Side, 50)
	if req.RSVPStatus != "" && !req.RSVPStatus.Valid() {
		errs = append(errs, "rsvp_status: must be one of pending, confirmed, declined, maybe")
	}
	return errs
}

func (req CreateGuestRequest) toGuest(eventID, userID string) *domain.Guest {
	g := domain.NewGuest(eventID, strings.TrimSpace(req.Name), userID, time.Now())
	g.LastName = req.LastName
	g.Email = req.Email
	g.Phone = req.Phone
	if req.GuestType != "" {
		g.GuestType = req.GuestType
	}
	g.PrimaryGuestID = req.PrimaryGuestID
	if req.DietaryRestrictions != nil {
		g.DietaryRestrictions = req.DietaryRestrictions
	}
	g.Allergies = req.Allergies
	g.CurrentGroup = req.CurrentGroup
	g.Side = req.Side
	if req.RSVPStatus != "" {
		g.RSVPStatus = req.RSVPStatus
	}
	g.Approved = req.Approved
	g.Notes = req.Notes
	return g
}

// UpdateGuestRequest is the request body for PATCH /api/guests/{guestID}.
type UpdateGuestRequest struct {
	domain.GuestUpdate
}

// Validate implements Validator. Reference IDs must at least look like IDs; whether
// they belong to the event is checked by the service.
func (req UpdateGuestRequest) Validate() []string {
	errs := req.GuestUpdate.Validate()
	if req.PrimaryGuestID.HasValue() {
		errs = helpers.CheckID(errs, "primary_guest_id", &req.PrimaryGuestID.Value)
	}
	if req.CurrentGroup.HasValue() {
		errs = helpers.CheckID(errs, "current_group", &req.CurrentGroup.Value)
	}
	if req.Email.HasValue() && req.Email.Value != "" {
		errs = checkEmail(errs, "email", req.Email.Value)
	}
	return errs
}

type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Add a guest
// @Description primary_guest_id and current_group must reference a guest or group of the same event. Requires editor.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateGuestRequest true "Guest data"
// @Success 201 {object} helpers.APIResponse{data=domain.Guest}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/guests [post]
func (c *GuestController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest := req.toGuest(eventID, userID)
	if err := c.Service.Create(r.Context(), userID, guest); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, guest, "Guest created successfully")
}

// ListByEvent godoc
// @Summary List guests of an event
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} helpers.APIResponse{data=helpers.Page[domain.Guest]}
// @Failure 404 {object} helpers.APIResponse
// @Router /events/{eventID}/guests [get]
func (c *GuestController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	guests, total, err := c.Service.ListByEvent(r.Context(), eventID, userID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewPage(guests, params, total))
}

// Get godoc
// @Summary Get a guest
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.Guest}
// @Failure 404 {object} helpers.APIResponse
// @Router /guests/{guestID} [get]
func (c *GuestController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	guestID, ok := helpers.PathID(w, r, "guestID")
	if !ok {
		return
	}
	guest, err := c.Service.Get(r.Context(), guestID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}

// Update godoc
// @Summary Update a guest
// @Description Partial update; null clears nullable fields. Requires editor.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID (UUID)"
// @Param body body domain.GuestUpdate true "Fields to change"
// @Success 200 {object} helpers.APIResponse{data=domain.Guest}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /guests/{guestID} [patch]
func (c *GuestController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	guestID, ok := helpers.PathID(w, r, "guestID")
	if !ok {
		return
	}
	var req UpdateGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest, err := c.Service.Update(r.Context(), guestID, userID, req.GuestUpdate)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}

// Delete godoc
// @Summary Delete a guest
// @Description Frees any seat the guest held. Requires admin.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /guests/{guestID} [delete]
func (c *GuestController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	guestID, ok := helpers.PathID(w, r, "guestID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), guestID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusOK, "Guest deleted successfully")
}
