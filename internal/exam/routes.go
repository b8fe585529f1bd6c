package exam

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.With(auth.RequireRole(auth.RoleStudent)).Get("/available", h.ListAvailable)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))

		r.Post("/", h.CreateExam)
		r.Get("/", h.ListExams)
		r.Get("/{id}", h.GetExam)
		r.Patch("/{id}", h.UpdateExam)
		r.Delete("/{id}", h.DeleteExam)

		r.Post("/{id}/access-codes", h.IssueAccessCode)
		r.Get("/{id}/access-codes", h.ListAccessCodes)
		r.Delete("/{id}/access-codes/{codeID}", h.RevokeAccessCode)
	})
	return r
}
