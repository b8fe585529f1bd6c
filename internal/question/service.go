package question

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/sirupsen/logrus"
)

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionLocked   = errors.New("question is part of a submitted attempt and cannot change")
)

type Service interface {
	CreateSubject(ctx context.Context, dto CreateSubjectDTO) (*Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	// VisibleSubject returns the subject when the caller's tenant owns it.
	VisibleSubject(ctx context.Context, id uuid.UUID) (*Subject, error)
	AddQuestion(ctx context.Context, subjectID uuid.UUID, dto QuestionDTO) (*Question, error)
	ListQuestions(ctx context.Context, subjectID uuid.UUID) ([]Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, dto QuestionDTO) (*Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateSubject(ctx context.Context, dto CreateSubjectDTO) (*Subject, error) {
	log := config.WithContext(ctx)
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	creator, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	subject := &Subject{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(dto.Name),
		Description: strings.TrimSpace(dto.Description),
		SchoolID:    tenancy.EffectiveTenant(claims),
		CreatedBy:   creator,
	}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		log.WithError(err).Error("Failed to create subject")
		return nil, err
	}
	log.WithField("subject_id", subject.ID).Info("Subject created")
	return subject, nil
}

func (s *service) ListSubjects(ctx context.Context) ([]Subject, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSubjects(ctx, tenancy.EffectiveTenant(claims))
}

func (s *service) VisibleSubject(ctx context.Context, id uuid.UUID) (*Subject, error) {
	log := config.WithContext(ctx)
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	subject, err := s.repo.FindSubject(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load subject")
		return nil, err
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}
	if err := tenancy.VerifyOwnership(claims, subject.SchoolID); err != nil {
		log.WithField("subject_id", id).Warn("Subject requested from another tenant")
		return nil, ErrSubjectNotFound
	}
	return subject, nil
}

func (s *service) AddQuestion(ctx context.Context, subjectID uuid.UUID, dto QuestionDTO) (*Question, error) {
	log := config.WithContext(ctx)
	subject, err := s.VisibleSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	claims, _ := auth.GetUserClaimsFromContext(ctx)
	creator, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	q := &Question{ID: uuid.New(), SubjectID: subject.ID, CreatedBy: creator}
	if err := applyDTO(q, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		log.WithError(err).Error("Failed to create question")
		return nil, err
	}
	log.WithFields(logrus.Fields{"subject_id": subject.ID, "question_id": q.ID}).Info("Question added")
	return q, nil
}

func (s *service) ListQuestions(ctx context.Context, subjectID uuid.UUID) ([]Question, error) {
	subject, err := s.VisibleSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySubject(ctx, subject.ID)
}

func (s *service) ownedQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	q, err := s.repo.FindQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if _, err := s.VisibleSubject(ctx, q.SubjectID); err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *service) UpdateQuestion(ctx context.Context, id uuid.UUID, dto QuestionDTO) (*Question, error) {
	log := config.WithContext(ctx).WithField("question_id", id)
	q, err := s.ownedQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	locked, err := s.repo.InTerminalAttempt(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to check question references")
		return nil, err
	}
	if locked {
		log.Warn("Refused to edit question referenced by a submitted attempt")
		return nil, ErrQuestionLocked
	}

	if err := applyDTO(q, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		log.WithError(err).Error("Failed to update question")
		return nil, err
	}
	log.Info("Question updated")
	return q, nil
}

// DeleteQuestion is allowed even for questions already answered; scoring
// counts slots whose question vanished as incorrect.
func (s *service) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx).WithField("question_id", id)
	if _, err := s.ownedQuestion(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete question")
		return err
	}
	log.Info("Question deleted")
	return nil
}
