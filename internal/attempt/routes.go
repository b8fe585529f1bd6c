package attempt

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

// Routes serves the attempt surface. Entry is open to anonymous students;
// everything under an attempt accepts sessions bound to that attempt.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth)
		r.Post("/start", h.Start)
		r.Post("/confirm", h.Confirm)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Route("/{attemptID}", func(r chi.Router) {
			r.Use(auth.RequireAttemptBinding("attemptID"))

			r.Get("/slots/{index}", h.GetSlot)
			r.Post("/slots/{index}", h.RecordAnswer)
			r.Post("/submit", h.Submit)

			r.With(auth.RequireFullSession, auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin)).Delete("/", h.Unlock)
		})
	})
	return r
}

// ResultRoutes expects a full session upstream.
func ResultRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListResults)
	r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin)).Get("/export", h.ExportResults)
	r.Get("/{attemptID}", h.GetResult)
	return r
}
