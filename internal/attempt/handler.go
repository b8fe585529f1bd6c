package attempt

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
	client  Limiter
	entry   Limiter
}

// NewHandler wires the entry limiters: client counts every start or confirm
// from one address, entry counts them per address, exam code and username so
// a classroom behind one NAT does not share a single small budget.
func NewHandler(s Service, client, entry Limiter) *Handler {
	if client == nil {
		client = noopLimiter{}
	}
	if entry == nil {
		entry = noopLimiter{}
	}
	return &Handler{service: s, client: client, entry: entry}
}

func statusFor(e *Error) int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindInvalidState:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := config.WithContext(r.Context())

	if errors.Is(err, auth.ErrNoSession) || errors.Is(err, auth.ErrInvalidClaims) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		log.WithError(err).Error("Attempt request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := statusFor(e)
	msg := string(e.Kind)
	if e.Reason != "" {
		msg = string(e.Reason)
	}
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Attempt request failed")
	}
	config.JSON(w, status, ErrorResponse{Error: msg, Kind: e.Kind, Reason: e.Reason})
}

func parseAttemptID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid question index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func entryKey(r *http.Request, dto StartDTO) string {
	return "entry:" + clientKey(r) + ":" + dto.ExamCode + ":" + strings.ToLower(strings.TrimSpace(dto.Username))
}

// throttle reports whether the request may proceed. Limiter failures let the
// request through.
func (h *Handler) throttle(w http.ResponseWriter, r *http.Request, l Limiter, key string) bool {
	ok, err := l.Allow(r.Context(), key)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("Rate limiter unavailable, allowing request")
		return true
	}
	if !ok {
		config.WithContext(r.Context()).WithField("key", key).Warn("Exam entry rate limit exceeded")
		http.Error(w, "too many attempts, try again later", http.StatusTooManyRequests)
		return false
	}
	return true
}

func (h *Handler) decodeEntry(w http.ResponseWriter, r *http.Request) (StartDTO, bool) {
	var dto StartDTO
	if !h.throttle(w, r, h.client, "client:"+clientKey(r)) {
		return dto, false
	}
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dto, false
	}
	if !h.throttle(w, r, h.entry, entryKey(r, dto)) {
		return dto, false
	}
	return dto, true
}

// started answers a materialized start. Students identified by username get
// a session bound to the new attempt.
func (h *Handler) started(w http.ResponseWriter, r *http.Request, out *StartOutcome) {
	resp := StartResponse{Outcome: OutcomeStartImmediately, AttemptID: &out.Attempt.ID}
	if out.Anonymous {
		token, err := auth.IssueTempSession(w, out.Student.ID, out.Student.SchoolID, out.Attempt.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Token = token
	}
	config.JSON(w, http.StatusCreated, resp)
}

// Start godoc
// @Summary      Start an exam
// @Description  Evaluates the entry rules. Answers with a started attempt or with the details the student must confirm first.
// @Tags         attempts
// @Accept       json
// @Produce      json
// @Param        body  body      StartDTO  true  "Exam entry"
// @Success      200   {object}  StartResponse
// @Success      201   {object}  StartResponse
// @Failure      400
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      429
// @Router       /attempts/start [post]
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	dto, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	out, err := h.service.Start(r.Context(), dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out.Confirmation != nil {
		config.JSON(w, http.StatusOK, StartResponse{
			Outcome:      OutcomeRequireConfirmation,
			Confirmation: out.Confirmation,
		})
		return
	}
	h.started(w, r, out)
}

// Confirm godoc
// @Summary      Confirm and start an exam
// @Tags         attempts
// @Accept       json
// @Produce      json
// @Param        body  body      StartDTO  true  "Exam entry"
// @Success      201   {object}  StartResponse
// @Failure      400
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      429
// @Router       /attempts/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	dto, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	out, err := h.service.Confirm(r.Context(), dto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.started(w, r, out)
}

// GetSlot godoc
// @Summary      Read one question of an attempt
// @Tags         attempts
// @Produce      json
// @Security     BearerAuth
// @Param        attemptID  path      string   true  "Attempt ID"
// @Param        index      path      integer  true  "Question index"
// @Success      200        {object}  SlotView
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /attempts/{attemptID}/slots/{index} [get]
func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAttemptID(w, r)
	if !ok {
		return
	}
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetSlot(r.Context(), id, index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, view)
}

// RecordAnswer godoc
// @Summary      Record an answer
// @Tags         attempts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        attemptID  path      string     true  "Attempt ID"
// @Param        index      path      integer    true  "Question index"
// @Param        body       body      AnswerDTO  true  "Selected option, null clears it"
// @Success      200
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /attempts/{attemptID}/slots/{index} [post]
func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAttemptID(w, r)
	if !ok {
		return
	}
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}
	var dto AnswerDTO
	if err := config.DecodeJSON(r, &dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.service.RecordAnswer(r.Context(), id, index, dto.Answer); err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]any{"saved": true, "question_index": index})
}

// Submit godoc
// @Summary      Submit an attempt
// @Tags         attempts
// @Produce      json
// @Security     BearerAuth
// @Param        attemptID  path      string  true  "Attempt ID"
// @Success      200        {object}  SubmitResponse
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /attempts/{attemptID}/submit [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAttemptID(w, r)
	if !ok {
		return
	}
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.service.Submit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := SubmitResponse{Result: res}
	if claims.BoundTo(id) {
		auth.EndSession(w)
		resp.SessionEnded = true
		config.WithContext(r.Context()).WithField("attempt_id", id).Info("Temporary session ended after submit")
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAttemptID(w, r)
	if !ok {
		return
	}
	if err := h.service.Unlock(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]string{"message": "attempt unlocked"})
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	var examID *uuid.UUID
	if raw := r.URL.Query().Get("exam_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid exam_id", http.StatusBadRequest)
			return
		}
		examID = &id
	}
	rows, err := h.service.ListResults(r.Context(), examID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, rows)
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAttemptID(w, r)
	if !ok {
		return
	}
	d, err := h.service.GetResult(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, d)
}

func (h *Handler) ExportResults(w http.ResponseWriter, r *http.Request) {
	examID, err := uuid.Parse(r.URL.Query().Get("exam_id"))
	if err != nil {
		http.Error(w, "exam_id is required", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportResults(r.Context(), examID, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	config.WithContext(r.Context()).WithFields(logrus.Fields{
		"exam_id": examID,
		"bytes":   buf.Len(),
	}).Debug("Results export ready")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results-`+examID.String()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
