package question

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

func SubjectRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))

	r.Post("/", h.CreateSubject)
	r.Get("/", h.ListSubjects)
	r.Post("/{id}/questions", h.AddQuestion)
	r.Get("/{id}/questions", h.ListQuestions)
	return r
}

func QuestionRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))

	r.Put("/{questionID}", h.UpdateQuestion)
	r.Delete("/{questionID}", h.DeleteQuestion)
	return r
}
