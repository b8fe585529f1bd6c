package attempt

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
	"github.com/sirupsen/logrus"
)

// StartOutcome is what a start or confirm produced. Exactly one of Attempt
// and Confirmation is set.
type StartOutcome struct {
	Attempt      *Attempt
	Confirmation *Confirmation
	Student      *user.User
	// Anonymous is set when the student was identified by username rather
	// than by a full session, so the caller needs a temp session.
	Anonymous bool
}

type Service interface {
	Start(ctx context.Context, dto StartDTO) (*StartOutcome, error)
	Confirm(ctx context.Context, dto StartDTO) (*StartOutcome, error)
	GetSlot(ctx context.Context, attemptID uuid.UUID, index int) (*SlotView, error)
	RecordAnswer(ctx context.Context, attemptID uuid.UUID, index int, answer *string) (*AnswerSlot, error)
	Submit(ctx context.Context, attemptID uuid.UUID) (*Result, error)
	Unlock(ctx context.Context, attemptID uuid.UUID) error
	ListResults(ctx context.Context, examID *uuid.UUID) ([]ResultRow, error)
	GetResult(ctx context.Context, attemptID uuid.UUID) (*ResultDetail, error)
	ExportResults(ctx context.Context, examID uuid.UUID, w io.Writer) error
}

type service struct {
	repo         Repository
	bank         question.Bank
	gate         *Gate
	materializer *Materializer
	recorder     *Recorder
	scorer       *Scorer
}

func NewService(repo Repository, bank question.Bank) Service {
	return &service{
		repo:         repo,
		bank:         bank,
		gate:         NewGate(repo),
		materializer: NewMaterializer(repo, bank),
		recorder:     NewRecorder(repo, bank),
		scorer:       NewScorer(repo, bank),
	}
}

// resolveStudent identifies who is entering. A full student session wins;
// otherwise the username in the request names the student. Staff sessions
// cannot enter exams.
func (s *service) resolveStudent(ctx context.Context, dto StartDTO) (*user.User, bool, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err == nil && !claims.IsTemp() && claims.Role != auth.RoleStudent {
		config.WithContext(ctx).WithField("role", claims.Role).Warn("Staff session tried to enter an exam")
		return nil, false, denial(ReasonUnknownStudent)
	}
	if err == nil && !claims.IsTemp() {
		id, err := claims.UserUUID()
		if err != nil {
			return nil, false, err
		}
		u, err := s.repo.FindStudentByID(ctx, id)
		if err != nil {
			return nil, false, storeErr(err)
		}
		if u == nil {
			return nil, false, denial(ReasonUnknownStudent)
		}
		return u, false, nil
	}

	username := strings.TrimSpace(dto.Username)
	if username == "" {
		return nil, false, denial(ReasonUnknownStudent)
	}
	u, err := s.repo.FindStudentByUsername(ctx, username)
	if err != nil {
		return nil, false, storeErr(err)
	}
	if u == nil {
		return nil, false, denial(ReasonUnknownStudent)
	}
	return u, true, nil
}

func requestFor(student *user.User, dto StartDTO) Request {
	return Request{
		Student:         student,
		ExamCode:        dto.ExamCode,
		AccessCode:      strings.TrimSpace(dto.AccessCode),
		RequesterTenant: student.SchoolID,
	}
}

// begin materializes once more when a parallel start for the same student won
// the race, so the loser re-evaluates against the winner's state.
func (s *service) begin(ctx context.Context, req Request) (*Attempt, error) {
	a, err := s.materializer.Begin(ctx, req)
	if errors.Is(err, ErrConcurrentStart) {
		config.WithContext(ctx).WithField("student_id", req.Student.ID).Warn("Concurrent start detected, retrying")
		a, err = s.materializer.Begin(ctx, req)
	}
	return a, err
}

func (s *service) Start(ctx context.Context, dto StartDTO) (*StartOutcome, error) {
	student, anonymous, err := s.resolveStudent(ctx, dto)
	if err != nil {
		return nil, err
	}
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"student_id": student.ID,
		"exam_code":  dto.ExamCode,
	})

	req := requestFor(student, dto)
	d, err := s.gate.Evaluate(ctx, req)
	if err != nil {
		log.WithError(err).Error("Failed to evaluate exam entry")
		return nil, storeErr(err)
	}
	if d.Denied() {
		log.WithField("reason", d.Reason).Info("Exam entry denied")
		return nil, denial(d.Reason)
	}

	out := &StartOutcome{Student: student, Anonymous: anonymous}
	if d.Outcome == OutcomeRequireConfirmation {
		out.Confirmation = &Confirmation{
			ExamID:          d.Exam.ID,
			ExamTitle:       d.Exam.Title,
			Description:     d.Exam.Description,
			DurationMinutes: d.Exam.DurationMinutes,
			TotalMarks:      d.Exam.TotalMarks,
			StudentName:     student.FullName,
			Username:        student.Username,
		}
		return out, nil
	}

	a, err := s.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	out.Attempt = a
	return out, nil
}

func (s *service) Confirm(ctx context.Context, dto StartDTO) (*StartOutcome, error) {
	student, anonymous, err := s.resolveStudent(ctx, dto)
	if err != nil {
		return nil, err
	}
	a, err := s.begin(ctx, requestFor(student, dto))
	if err != nil {
		return nil, err
	}
	return &StartOutcome{Attempt: a, Student: student, Anonymous: anonymous}, nil
}

// attemptCaller returns the student acting on attemptID. A session bound to
// an attempt stops working once that attempt is submitted, even if the token
// itself has not expired.
func (s *service) attemptCaller(ctx context.Context, attemptID uuid.UUID) (uuid.UUID, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Role != auth.RoleStudent {
		return uuid.Nil, ErrNotOwner
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, err
	}
	if !claims.IsTemp() {
		return id, nil
	}

	a, err := s.repo.FindAttempt(ctx, attemptID, false)
	if err != nil {
		return uuid.Nil, storeErr(err)
	}
	if a != nil && a.Status.IsTerminal() {
		config.WithContext(ctx).WithField("attempt_id", attemptID).Warn("Temporary session reused after submit")
		return uuid.Nil, ErrSessionEnded
	}
	return id, nil
}

func (s *service) GetSlot(ctx context.Context, attemptID uuid.UUID, index int) (*SlotView, error) {
	id, err := s.attemptCaller(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.recorder.View(ctx, id, attemptID, index)
}

func (s *service) RecordAnswer(ctx context.Context, attemptID uuid.UUID, index int, answer *string) (*AnswerSlot, error) {
	id, err := s.attemptCaller(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.recorder.Record(ctx, id, attemptID, index, answer)
}

func (s *service) Submit(ctx context.Context, attemptID uuid.UUID) (*Result, error) {
	id, err := s.attemptCaller(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.scorer.Submit(ctx, id, attemptID)
}

// Unlock deletes an attempt so the student may sit the exam again.
func (s *service) Unlock(ctx context.Context, attemptID uuid.UUID) error {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	log := config.WithContext(ctx).WithField("attempt_id", attemptID)

	a, err := s.repo.FindAttempt(ctx, attemptID, false)
	if err != nil {
		return storeErr(err)
	}
	if a == nil {
		return ErrAttemptNotFound
	}
	e, err := s.repo.FindExamByID(ctx, a.ExamID)
	if err != nil {
		return storeErr(err)
	}
	if e == nil || tenancy.VerifyOwnership(claims, e.SchoolID) != nil {
		log.Warn("Unlock refused for attempt outside tenant")
		return ErrAttemptNotFound
	}

	if err := s.repo.DeleteAttempt(ctx, attemptID); err != nil {
		log.WithError(err).Error("Failed to unlock attempt")
		return storeErr(err)
	}
	log.WithFields(logrus.Fields{
		"exam_id":    a.ExamID,
		"student_id": a.StudentID,
		"by":         claims.UserID,
	}).Info("Attempt unlocked")
	return nil
}

func (s *service) ListResults(ctx context.Context, examID *uuid.UUID) ([]ResultRow, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := resultsFilter(claims, examID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListResults(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (s *service) GetResult(ctx context.Context, attemptID uuid.UUID) (*ResultDetail, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	d, err := loadDetail(ctx, s.repo, s.bank, claims, attemptID)
	if err != nil {
		return nil, storeErr(err)
	}
	return d, nil
}

func (s *service) ExportResults(ctx context.Context, examID uuid.UUID, w io.Writer) error {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	e, err := s.repo.FindExamByID(ctx, examID)
	if err != nil {
		return storeErr(err)
	}
	if e == nil || tenancy.VerifyOwnership(claims, e.SchoolID) != nil {
		return &Error{Kind: KindNotFound, Reason: ReasonNotFound}
	}

	rows, err := s.repo.ListResults(ctx, ResultFilter{ExamID: &examID, Tenant: tenancy.EffectiveTenant(claims)})
	if err != nil {
		return storeErr(err)
	}
	config.WithContext(ctx).WithFields(logrus.Fields{
		"exam_id": examID,
		"rows":    len(rows),
	}).Info("Exporting results")
	return writeCSV(w, rows)
}
