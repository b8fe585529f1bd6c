package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/middlewares"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
)

type RouterConfig struct {
	AuthHandler     *auth.Handler
	TenancyHandler  *tenancy.Handler
	UserHandler     *user.Handler
	QuestionHandler *question.Handler
	ExamHandler     *exam.Handler
	AttemptHandler  *attempt.Handler
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.Login)
		r.Post("/register", cfg.UserHandler.Register)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	// Attempt routes handle their own session rules: entry is open and
	// attempt-bound sessions are accepted under /attempts/{id}.
	r.Mount("/attempts", attempt.Routes(cfg.AttemptHandler))

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Use(auth.RequireFullSession)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/schools", tenancy.Routes(cfg.TenancyHandler))
		r.Mount("/subjects", question.SubjectRoutes(cfg.QuestionHandler))
		r.Mount("/questions", question.QuestionRoutes(cfg.QuestionHandler))
		r.Mount("/exams", exam.Routes(cfg.ExamHandler))
		r.Mount("/results", attempt.ResultRoutes(cfg.AttemptHandler))

		r.With(auth.RequireRole(auth.RoleSuperadmin)).Post("/tenancy/select", cfg.TenancyHandler.SelectTenant)
	})
	return r
}
