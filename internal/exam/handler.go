package exam

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
)

type Handler struct {
	service ExamService
}

func NewHandler(s ExamService) *Handler {
	return &Handler{service: s}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrExamNotFound), errors.Is(err, ErrAccessCodeNotFound),
		errors.Is(err, ErrStudentNotFound), errors.Is(err, question.ErrSubjectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptySubject):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrDuplicateCode):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		config.WithContext(r.Context()).WithError(err).Error("Exam request failed")
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

func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var dto CreateExamDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e, err := h.service.CreateExam(r.Context(), dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, e)
}

func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.service.ListExams(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, exams)
}

func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	exams, err := h.service.ListAvailable(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, exams)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	e, err := h.service.GetExam(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, e)
}

func (h *Handler) UpdateExam(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateExamDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e, err := h.service.UpdateExam(r.Context(), id, dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteExam(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]string{"message": "exam deleted"})
}

func (h *Handler) IssueAccessCode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	var dto IssueAccessCodeDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ac, err := h.service.IssueAccessCode(r.Context(), id, dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, ac)
}

func (h *Handler) ListAccessCodes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	codes, err := h.service.ListAccessCodes(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, codes)
}

func (h *Handler) RevokeAccessCode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	codeID, ok := parseParam(w, r, "codeID")
	if !ok {
		return
	}
	if err := h.service.RevokeAccessCode(r.Context(), id, codeID); err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]string{"message": "access code revoked"})
}
