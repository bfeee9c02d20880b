package controllers

import (
	"context"
	"net/http"

	"seatplanner/internal/database"
	"seatplanner/internal/delivery/http/helpers"
)

// HealthChecker reports on the store. *database.DB implements it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) database.HealthCheck
}

type HealthController struct {
	DB HealthChecker
}

func NewHealthController(db HealthChecker) *HealthController {
	return &HealthController{DB: db}
}

// Health godoc
// @Summary Health check
// @Description Pings the database and reports connection pool statistics.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=database.HealthCheck}
// @Failure 503 {object} helpers.APIResponse{data=database.HealthCheck}
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	hc := c.DB.HealthCheck(r.Context())
	if hc.Status != "healthy" {
		helpers.WriteJSONResponse(w, http.StatusServiceUnavailable, helpers.APIResponse{Success: false, Data: hc, Message: hc.Error})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, hc)
}
