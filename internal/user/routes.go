package user

import (
	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.GetUser)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
		r.Post("/students", h.CreateStudent)
		r.Get("/students", h.ListStudents)
		r.Delete("/students/{id}", h.DeleteStudent)
		r.Post("/students/{id}/reset-password", h.ResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleSuperadmin))
		r.Post("/admins", h.CreateAdmin)
		r.Patch("/admins/{id}/restriction", h.SetAdminRestricted)
	})
	return r
}
