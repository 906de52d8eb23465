package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"teatroqr/internal/delivery/http/controllers"
	"teatroqr/internal/delivery/http/middleware"
	"teatroqr/internal/metrics"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Works      *controllers.WorkController
	Attendees  *controllers.AttendeeController
	Validation *controllers.ValidationController
	Health     *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers) *http.ServeMux {
	mux := http.NewServeMux()

	// Works
	mux.HandleFunc("POST /obras", c.Works.CreateWork)
	mux.HandleFunc("GET /obras", c.Works.ListWorks)
	mux.HandleFunc("GET /obras/{workID}", c.Works.GetWork)
	mux.HandleFunc("PUT /obras/{workID}", c.Works.UpdateWork)
	mux.HandleFunc("DELETE /obras/{workID}", c.Works.DeleteWork)

	// Attendees
	mux.HandleFunc("POST /usuarios", c.Attendees.Register)
	mux.HandleFunc("POST /admin/usuarios", c.Attendees.CreateAttendee)
	mux.HandleFunc("GET /usuarios", c.Attendees.ListAttendees)
	mux.HandleFunc("GET /usuarios/{attendeeID}", c.Attendees.GetAttendee)
	mux.HandleFunc("GET /usuarios/{attendeeID}/qr", c.Attendees.GetAttendeeQRCode)
	mux.HandleFunc("PUT /usuarios/{attendeeID}", c.Attendees.UpdateAttendee)
	mux.HandleFunc("DELETE /usuarios/{attendeeID}", c.Attendees.DeleteAttendee)

	// Door check-in
	mux.HandleFunc("POST /validar_qr", c.Validation.ValidateQR)

	// Ops
	mux.HandleFunc("GET /healthz", c.Health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with CORS, request logging and metrics.
func NewHandler(logger *slog.Logger, allowedOrigins []string, c Controllers) http.Handler {
	var h http.Handler = NewRouter(c)
	h = metrics.HTTPMiddleware(h)
	h = middleware.LoggingMiddleware(logger, h)
	return middleware.CORS(allowedOrigins, h)
}
