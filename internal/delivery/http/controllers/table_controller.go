package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/domain"
)

// CreateTableRequest is the request body for POST /api/versions/{versionID}/tables.
type CreateTableRequest struct {
	Name           string            `json:"name"`
	Number         *int              `json:"number"`
	TotalSeats     *int              `json:"total_seats"`
	Shape          domain.TableShape `json:"shape"`
	Section        *string           `json:"section"`
	Position       *domain.Position  `json:"position"`
	Color          *string           `json:"color"`
	AdjacentTables []string          `json:"adjacent_tables"`
	IsReserved     bool              `json:"is_reserved"`
	Notes          *string           `json:"notes"`
}

// Validate implements Validator.
func (req CreateTableRequest) Validate() []string {
	var errs []string
	errs = checkLength(errs, "name", req.Name, 1, 100)
	if req.Number == nil {
		errs = append(errs, "number: is required")
	} else if *req.Number < 1 {
		errs = append(errs, "number: must be a positive integer")
	}
	if req.TotalSeats == nil {
		errs = append(errs, "total_seats: is required")
	} else if *req.TotalSeats < domain.MinTableSeats || *req.TotalSeats > domain.MaxTableSeats {
		errs = append(errs, fmt.Sprintf("total_seats: must be between %d and %d", domain.MinTableSeats, domain.MaxTableSeats))
	}
	if req.Shape != "" && !req.Shape.Valid() {
		errs = append(errs, "shape: must be one of Circle, Rectangle, Square, Oval")
	}
	if req.Position == nil {
		errs = append(errs, "position: is required")
	} else {
		errs = append(errs, req.Position.Validate("position")...)
	}
	for i, id := range req.AdjacentTables {
		errs = helpers.CheckID(errs, fmt.Sprintf("adjacent_tables.%d", i), &id)
	}
	return errs
}

func (req CreateTableRequest) toTable(versionID string) *domain.Table {
	t := domain.NewTable(versionID, "", strings.TrimSpace(req.Name), *req.Number, *req.TotalSeats, *req.Position, time.Now())
	if req.Shape != "" {
		t.Shape = req.Shape
	}
	t.Section = req.Section
	t.Color = req.Color
	if req.AdjacentTables != nil {
		t.AdjacentTables = req.AdjacentTables
	}
	t.IsReserved = req.IsReserved
	t.Notes = req.Notes
	return t
}

// UpdateTableRequest is the request body for PATCH /api/tables/{tableID}.
type UpdateTableRequest struct {
	domain.TableUpdate
}

// Validate implements Validator.
func (req UpdateTableRequest) Validate() []string {
	errs := req.TableUpdate.Validate()
	if req.AdjacentTables.HasValue() {
		for i, id := range req.AdjacentTables.Value {
			errs = helpers.CheckID(errs, fmt.Sprintf("adjacent_tables.%d", i), &id)
		}
	}
	return errs
}

// AssignGuestRequest is the request body for POST /api/tables/{tableID}/assign.
// seat_number is optional; without it the guest is seated at the table without a fixed seat.
type AssignGuestRequest struct {
	GuestID    string `json:"guest_id"`
	SeatNumber *int   `json:"seat_number"`
}

// Validate implements Validator.
func (req AssignGuestRequest) Validate() []string {
	var errs []string
	if req.GuestID == "" {
		errs = append(errs, "guest_id: is required")
	} else {
		errs = helpers.CheckID(errs, "guest_id", &req.GuestID)
	}
	if req.SeatNumber != nil && *req.SeatNumber < 1 {
		errs = append(errs, "seat_number: must be a positive integer")
	}
	return errs
}

// TableController serves tables and the guest assignments on them.
type TableController struct {
	Logger  *slog.Logger
	Service domain.SeatingService
}

func NewTableController(logger *slog.Logger, svc domain.SeatingService) *TableController {
	return &TableController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a table
// @Description Number must be unique within the version. Shape defaults to Circle. Requires editor.
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Param body body CreateTableRequest true "Table data"
// @Success 201 {object} helpers.APIResponse{data=domain.Table}
// @Failure 400 {object} helpers.APIResponse "validation failed or number already used"
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID}/tables [post]
func (c *TableController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	var req CreateTableRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	table := req.toTable(versionID)
	if err := c.Service.CreateTable(r.Context(), userID, table); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, table, "Table created successfully")
}

// ListByVersion godoc
// @Summary List tables of a version
// @Description Ordered by table number, each with its assigned guest count.
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param versionID path string true "Version ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Table}
// @Failure 404 {object} helpers.APIResponse
// @Router /versions/{versionID}/tables [get]
func (c *TableController) ListByVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	versionID, ok := helpers.PathID(w, r, "versionID")
	if !ok {
		return
	}
	tables, err := c.Service.ListTables(r.Context(), versionID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if tables == nil {
		tables = []*domain.Table{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tables)
}

// Get godoc
// @Summary Get a table
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param tableID path string true "Table ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.Table}
// @Failure 404 {object} helpers.APIResponse
// @Router /tables/{tableID} [get]
func (c *TableController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tableID, ok := helpers.PathID(w, r, "tableID")
	if !ok {
		return
	}
	table, err := c.Service.GetTable(r.Context(), tableID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, table)
}

// Update godoc
// @Summary Update a table
// @Description total_seats cannot drop below the number of guests already seated.
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tableID path string true "Table ID (UUID)"
// @Param body body domain.TableUpdate true "Fields to change"
// @Success 200 {object} helpers.APIResponse{data=domain.Table}
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /tables/{tableID} [patch]
func (c *TableController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tableID, ok := helpers.PathID(w, r, "tableID")
	if !ok {
		return
	}
	var req UpdateTableRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	table, err := c.Service.UpdateTable(r.Context(), tableID, userID, req.TableUpdate)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, table)
}

// Delete godoc
// @Summary Delete a table
// @Description Fails while guests are assigned to the table. Requires admin.
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param tableID path string true "Table ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /tables/{tableID} [delete]
func (c *TableController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tableID, ok := helpers.PathID(w, r, "tableID")
	if !ok {
		return
	}
	if err := c.Service.DeleteTable(r.Context(), tableID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusOK, "Table deleted successfully")
}

// ListAssignments godoc
// @Summary List a table's assignments
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param tableID path string true "Table ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Assignment}
// @Failure 404 {object} helpers.APIResponse
// @Router /tables/{tableID}/assignments [get]
func (c *TableController) ListAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tableID, ok := helpers.PathID(w, r, "tableID")
	if !ok {
		return
	}
	assignments, err := c.Service.ListAssignments(r.Context(), tableID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if assignments == nil {
		assignments = []*domain.Assignment{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignments)
}

// Assign godoc
// @Summary Seat a guest at a table
// @Description The guest must belong to the table's event and may hold one seat per version. Requires editor.
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tableID path string true "Table ID (UUID)"
// @Param body body AssignGuestRequest true "Guest and optional seat"
// @Success 201 {object} helpers.APIResponse{data=domain.Assignment}
// @Failure 400 {object} helpers.APIResponse "seat taken, table full, already assigned, wrong event"
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /tables/{tableID}/assign [post]
func (c *TableController) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tableID, ok := helpers.PathID(w, r, "tableID")
	if !ok {
		return
	}
	var req AssignGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.Service.Assign(r.Context(), tableID, req.GuestID, userID, req.SeatNumber)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONCreated(w, a, "Guest assigned to table successfully")
}

// Unassign godoc
// @Summary Remove a guest from a table
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param tableID path string true "Table ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /tables/{tableID}/assignments/{guestID} [delete]
func (c *TableController) Unassign(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tableID, ok := helpers.PathID(w, r, "tableID")
	if !ok {
		return
	}
	guestID, ok := helpers.PathID(w, r, "guestID")
	if !ok {
		return
	}
	if err := c.Service.Unassign(r.Context(), tableID, guestID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusOK, "Guest removed from table successfully")
}
