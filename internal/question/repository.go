package question

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"gorm.io/gorm"
)

type Repository interface {
	Bank

	CreateSubject(ctx context.Context, s *Subject) error
	ListSubjects(ctx context.Context, tenant *uuid.UUID) ([]Subject, error)
	FindSubject(ctx context.Context, id uuid.UUID) (*Subject, error)

	CreateQuestion(ctx context.Context, q *Question) error
	FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	// InTerminalAttempt reports whether any submitted attempt holds the question.
	InTerminalAttempt(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSubject(ctx context.Context, s *Subject) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) ListSubjects(ctx context.Context, tenant *uuid.UUID) ([]Subject, error) {
	var subjects []Subject
	err := r.db.WithContext(ctx).
		Scopes(tenancy.Scope("school_id", tenant)).
		Order("name ASC").
		Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *repository) FindSubject(ctx context.Context, id uuid.UUID) (*Subject, error) {
	var s Subject
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateQuestion(ctx context.Context, q *Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *repository) FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) UpdateQuestion(ctx context.Context, q *Question) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *repository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Question{}, "id = ?", id).Error
}

func (r *repository) InTerminalAttempt(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("answers").
		Joins("JOIN exam_sessions ON exam_sessions.id = answers.attempt_id").
		Where("answers.question_id = ? AND exam_sessions.status IN ?", id, []string{"completed", "submitted"}).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]Question, error) {
	var questions []Question
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Question, error) {
	out := make(map[uuid.UUID]Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []Question
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}
