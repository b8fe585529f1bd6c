package tenancy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.RequireRole(auth.RoleSuperadmin))

	r.Post("/", h.CreateSchool)
	r.Get("/", h.ListSchools)
	r.Patch("/{id}/restriction", h.SetRestricted)
	r.Delete("/{id}", h.DeleteSchool)
	return r
}
