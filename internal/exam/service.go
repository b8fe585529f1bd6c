package exam

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
	"github.com/sirupsen/logrus"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrAccessCodeNotFound = errors.New("access code not found")
	ErrStudentNotFound    = errors.New("student not found in this exam's school")
	ErrDuplicateCode      = errors.New("generated code collided, retry")
	ErrEmptySubject       = errors.New("subject has no questions")
)

type ExamService interface {
	CreateExam(ctx context.Context, dto CreateExamDTO) (*Exam, error)
	ListExams(ctx context.Context) ([]Exam, error)
	ListAvailable(ctx context.Context) ([]AvailableExam, error)
	GetExam(ctx context.Context, id uuid.UUID) (*Exam, error)
	UpdateExam(ctx context.Context, id uuid.UUID, dto UpdateExamDTO) (*Exam, error)
	DeleteExam(ctx context.Context, id uuid.UUID) error

	IssueAccessCode(ctx context.Context, examID uuid.UUID, dto IssueAccessCodeDTO) (*AccessCode, error)
	ListAccessCodes(ctx context.Context, examID uuid.UUID) ([]AccessCode, error)
	RevokeAccessCode(ctx context.Context, examID, codeID uuid.UUID) error
}

type examService struct {
	repo     Repository
	subjects question.Service
	bank     question.Bank
	users    user.UserRepository
	now      func() time.Time
}

func NewService(repo Repository, subjects question.Service, bank question.Bank, users user.UserRepository) ExamService {
	return &examService{
		repo:     repo,
		subjects: subjects,
		bank:     bank,
		users:    users,
		now:      time.Now,
	}
}

func claimsFromContext(ctx context.Context, log logrus.FieldLogger, action string) (*auth.Claims, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return nil, err
	}
	return claims, nil
}

func (s *examService) CreateExam(ctx context.Context, dto CreateExamDTO) (*Exam, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "create exam")
	if err != nil {
		return nil, err
	}
	creator, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	subject, err := s.subjects.VisibleSubject(ctx, dto.SubjectID)
	if err != nil {
		return nil, err
	}

	questions, err := s.bank.ListBySubject(ctx, subject.ID)
	if err != nil {
		log.WithError(err).Error("Failed to load subject questions")
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptySubject
	}
	total := 0
	for i := range questions {
		total += questions[i].EffectiveMarks()
	}

	code, err := GenerateCode(ctx, s.repo.CodeTaken, s.now())
	if err != nil {
		log.WithError(err).Error("Failed to generate exam code")
		return nil, err
	}

	e := &Exam{
		ID:              uuid.New(),
		SubjectID:       subject.ID,
		CreatedBy:       creator,
		SchoolID:        tenancy.EffectiveTenant(claims),
		Title:           strings.TrimSpace(dto.Title),
		Description:     strings.TrimSpace(dto.Description),
		Code:            code,
		DurationMinutes: dto.DurationMinutes,
		TotalMarks:      total,
		IsActive:        true,
		AutoStartOnCode: dto.AutoStartOnCode,
		AllowQuickStart: dto.AllowQuickStart,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if config.IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		log.WithError(err).Error("Failed to create exam")
		return nil, err
	}

	log.WithFields(logrus.Fields{"exam_id": e.ID, "code": e.Code, "total_marks": total}).Info("Exam created")
	return e, nil
}

func (s *examService) ListExams(ctx context.Context) ([]Exam, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "list exams")
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenancy.EffectiveTenant(claims), false)
}

func (s *examService) ListAvailable(ctx context.Context) ([]AvailableExam, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "list available exams")
	if err != nil {
		return nil, err
	}
	tenant := claims.TenantUUID()
	if tenant == nil {
		return []AvailableExam{}, nil
	}

	exams, err := s.repo.List(ctx, tenant, true)
	if err != nil {
		log.WithError(err).Error("Failed to list available exams")
		return nil, err
	}
	out := make([]AvailableExam, 0, len(exams))
	for _, e := range exams {
		out = append(out, AvailableExam{
			ID:              e.ID,
			Title:           e.Title,
			Description:     e.Description,
			DurationMinutes: e.DurationMinutes,
			TotalMarks:      e.TotalMarks,
			CreatedAt:       e.CreatedAt,
		})
	}
	return out, nil
}

// ownedExam loads an exam the caller's tenant owns. Foreign exams are
// reported as missing.
func (s *examService) ownedExam(ctx context.Context, log logrus.FieldLogger, id uuid.UUID, action string) (*Exam, error) {
	claims, err := claimsFromContext(ctx, log, action)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load exam")
		return nil, err
	}
	if e == nil {
		return nil, ErrExamNotFound
	}
	if err := tenancy.VerifyOwnership(claims, e.SchoolID); err != nil {
		log.WithField("exam_id", id).Warnf("Cross-tenant attempt to %s", action)
		return nil, ErrExamNotFound
	}
	return e, nil
}

func (s *examService) GetExam(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return s.ownedExam(ctx, config.WithContext(ctx), id, "read exam")
}

func (s *examService) UpdateExam(ctx context.Context, id uuid.UUID, dto UpdateExamDTO) (*Exam, error) {
	log := config.WithContext(ctx).WithField("exam_id", id)
	e, err := s.ownedExam(ctx, log, id, "update exam")
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		e.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		e.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.DurationMinutes != nil {
		e.DurationMinutes = *dto.DurationMinutes
	}
	if dto.IsActive != nil {
		e.IsActive = *dto.IsActive
	}
	if dto.AutoStartOnCode != nil {
		e.AutoStartOnCode = *dto.AutoStartOnCode
	}
	if dto.AllowQuickStart != nil {
		e.AllowQuickStart = *dto.AllowQuickStart
	}

	if err := s.repo.Update(ctx, e); err != nil {
		log.WithError(err).Error("Failed to update exam")
		return nil, err
	}
	log.Info("Exam updated")
	return e, nil
}

func (s *examService) DeleteExam(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx).WithField("exam_id", id)
	if _, err := s.ownedExam(ctx, log, id, "delete exam"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete exam")
		return err
	}
	log.Info("Exam deleted with its attempts and access codes")
	return nil
}

func (s *examService) IssueAccessCode(ctx context.Context, examID uuid.UUID, dto IssueAccessCodeDTO) (*AccessCode, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"exam_id": examID, "student_id": dto.StudentID})
	e, err := s.ownedExam(ctx, log, examID, "issue access code")
	if err != nil {
		return nil, err
	}
	claims, _ := auth.GetUserClaimsFromContext(ctx)
	issuer, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	student, err := s.users.FindByID(ctx, dto.StudentID)
	if err != nil {
		log.WithError(err).Error("Failed to load student")
		return nil, err
	}
	if student == nil || student.Role != auth.RoleStudent || !tenancy.SameTenant(student.SchoolID, e.SchoolID) {
		return nil, ErrStudentNotFound
	}

	code, err := GenerateCode(ctx, s.repo.AccessCodeTaken, s.now())
	if err != nil {
		log.WithError(err).Error("Failed to generate access code")
		return nil, err
	}

	ac := &AccessCode{
		ID:        uuid.New(),
		ExamID:    e.ID,
		StudentID: student.ID,
		Code:      code,
		CreatedBy: issuer,
	}
	if err := s.repo.CreateAccessCode(ctx, ac); err != nil {
		if config.IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		log.WithError(err).Error("Failed to store access code")
		return nil, err
	}
	log.Info("Access code issued")
	return ac, nil
}

func (s *examService) ListAccessCodes(ctx context.Context, examID uuid.UUID) ([]AccessCode, error) {
	log := config.WithContext(ctx).WithField("exam_id", examID)
	if _, err := s.ownedExam(ctx, log, examID, "list access codes"); err != nil {
		return nil, err
	}
	return s.repo.ListAccessCodes(ctx, examID)
}

// RevokeAccessCode removes the code. Attempts it already opened are kept.
func (s *examService) RevokeAccessCode(ctx context.Context, examID, codeID uuid.UUID) error {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"exam_id": examID, "code_id": codeID})
	if _, err := s.ownedExam(ctx, log, examID, "revoke access code"); err != nil {
		return err
	}
	ac, err := s.repo.FindAccessCode(ctx, codeID)
	if err != nil {
		return err
	}
	if ac == nil || ac.ExamID != examID {
		return ErrAccessCodeNotFound
	}
	if err := s.repo.DeleteAccessCode(ctx, codeID); err != nil {
		log.WithError(err).Error("Failed to revoke access code")
		return err
	}
	log.Info("Access code revoked")
	return nil
}
