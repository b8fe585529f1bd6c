package question

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrSubjectNotFound), errors.Is(err, ErrQuestionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrQuestionLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrMissingRequiredOption), errors.Is(err, ErrUnknownLabel),
		errors.Is(err, ErrDuplicateLabel), errors.Is(err, ErrCorrectNotPresent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		config.WithContext(r.Context()).WithError(err).Error("Question request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func parseParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var dto CreateSubjectDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	subject, err := h.service.CreateSubject(r.Context(), dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, subject)
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.ListSubjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, subjects)
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	var dto QuestionDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q, err := h.service.AddQuestion(r.Context(), subjectID, dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, q)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	questions, err := h.service.ListQuestions(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, questions)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "questionID")
	if !ok {
		return
	}
	var dto QuestionDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q, err := h.service.UpdateQuestion(r.Context(), id, dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "questionID")
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}
