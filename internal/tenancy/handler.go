package tenancy

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

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrSuperadminOnly):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrSchoolNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSchoolHasMembers), errors.Is(err, ErrDuplicateCode):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	var dto CreateSchoolDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	school, err := h.service.CreateSchool(r.Context(), dto)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusCreated, school)
}

func (h *Handler) ListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.service.ListSchools(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, schools)
}

func (h *Handler) SetRestricted(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid school id", http.StatusBadRequest)
		return
	}

	var dto SetRestrictionDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	school, err := h.service.SetRestricted(r.Context(), id, *dto.Restricted)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, school)
}

func (h *Handler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid school id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteSchool(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]string{"message": "school deleted"})
}

func (h *Handler) SelectTenant(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto SelectTenantDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, err := h.service.SelectTenant(r.Context(), dto.SchoolID)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.IssueSession(w, *claims)
	if err != nil {
		log.WithError(err).Error("Failed to reissue session")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, map[string]string{
		"token":           token,
		"tenant_override": claims.TenantOverride,
	})
}
