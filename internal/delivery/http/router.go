package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"seatplanner/internal/delivery/http/controllers"
	"seatplanner/internal/delivery/http/middleware"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Collaborators *controllers.CollaboratorController
	Guests        *controllers.GuestController
	Groups        *controllers.GroupController
	Versions      *controllers.VersionController
	Tables        *controllers.TableController
	Health        *controllers.HealthController
}

// NewRouter registers every route. auth wraps handlers that need a bearer token;
// gatherer backs /metrics.
func NewRouter(c Controllers, auth func(http.HandlerFunc) http.HandlerFunc, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/register", c.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", c.Auth.Login)
	mux.HandleFunc("GET /api/auth/me", auth(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /api/events", auth(c.Events.List))
	mux.HandleFunc("POST /api/events", auth(c.Events.Create))
	mux.HandleFunc("GET /api/events/{eventID}", auth(c.Events.Get))
	mux.HandleFunc("PATCH /api/events/{eventID}", auth(c.Events.Update))
	mux.HandleFunc("DELETE /api/events/{eventID}", auth(c.Events.Delete))
	mux.HandleFunc("GET /api/events/{eventID}/stats", auth(c.Events.Stats))

	// Collaborators
	mux.HandleFunc("POST /api/events/{eventID}/collaborators", auth(c.Collaborators.Invite))
	mux.HandleFunc("GET /api/events/{eventID}/collaborators", auth(c.Collaborators.ListByEvent))
	mux.HandleFunc("GET /api/collaborators/mine", auth(c.Collaborators.ListMine))
	mux.HandleFunc("GET /api/collaborators/{collaboratorID}", auth(c.Collaborators.Get))
	mux.HandleFunc("PATCH /api/collaborators/{collaboratorID}", auth(c.Collaborators.UpdateRole))
	mux.HandleFunc("DELETE /api/collaborators/{collaboratorID}", auth(c.Collaborators.Remove))

	// Guests
	mux.HandleFunc("POST /api/events/{eventID}/guests", auth(c.Guests.Create))
	mux.HandleFunc("GET /api/events/{eventID}/guests", auth(c.Guests.ListByEvent))
	mux.HandleFunc("GET /api/guests/{guestID}", auth(c.Guests.Get))
	mux.HandleFunc("PATCH /api/guests/{guestID}", auth(c.Guests.Update))
	mux.HandleFunc("DELETE /api/guests/{guestID}", auth(c.Guests.Delete))

	// Groups
	mux.HandleFunc("POST /api/events/{eventID}/groups", auth(c.Groups.Create))
	mux.HandleFunc("GET /api/events/{eventID}/groups", auth(c.Groups.ListByEvent))
	mux.HandleFunc("GET /api/groups/{groupID}", auth(c.Groups.Get))
	mux.HandleFunc("PATCH /api/groups/{groupID}", auth(c.Groups.Update))
	mux.HandleFunc("DELETE /api/groups/{groupID}", auth(c.Groups.Delete))
	mux.HandleFunc("GET /api/groups/{groupID}/guests", auth(c.Groups.ListGuests))

	// Versions
	mux.HandleFunc("POST /api/events/{eventID}/versions", auth(c.Versions.Create))
	mux.HandleFunc("GET /api/events/{eventID}/versions", auth(c.Versions.ListByEvent))
	mux.HandleFunc("GET /api/versions/{versionID}", auth(c.Versions.Get))
	mux.HandleFunc("PATCH /api/versions/{versionID}", auth(c.Versions.Update))
	mux.HandleFunc("DELETE /api/versions/{versionID}", auth(c.Versions.Delete))
	mux.HandleFunc("POST /api/versions/{versionID}/activate", auth(c.Versions.Activate))
	mux.HandleFunc("POST /api/versions/{versionID}/duplicate", auth(c.Versions.Duplicate))

	// Tables and assignments
	mux.HandleFunc("POST /api/versions/{versionID}/tables", auth(c.Tables.Create))
	mux.HandleFunc("GET /api/versions/{versionID}/tables", auth(c.Tables.ListByVersion))
	mux.HandleFunc("GET /api/tables/{tableID}", auth(c.Tables.Get))
	mux.HandleFunc("PATCH /api/tables/{tableID}", auth(c.Tables.Update))
	mux.HandleFunc("DELETE /api/tables/{tableID}", auth(c.Tables.Delete))
	mux.HandleFunc("GET /api/tables/{tableID}/assignments", auth(c.Tables.ListAssignments))
	mux.HandleFunc("POST /api/tables/{tableID}/assign", auth(c.Tables.Assign))
	mux.HandleFunc("DELETE /api/tables/{tableID}/assignments/{guestID}", auth(c.Tables.Unassign))

	// Operations
	mux.HandleFunc("GET /health", c.Health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router in the global middleware chain:
// RequestID -> Metrics -> Logging -> CORS -> mux.
func NewHandler(mux http.Handler, metrics *middleware.Metrics, logger *slog.Logger, allowedOrigins []string) http.Handler {
	h := middleware.CORS(allowedOrigins, mux)
	h = middleware.LoggingMiddleware(logger, h)
	h = metrics.Handler(h)
	return middleware.RequestID(h)
}
