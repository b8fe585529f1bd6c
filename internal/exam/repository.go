package exam

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *Exam) error
	FindByID(ctx context.Context, id uuid.UUID) (*Exam, error)
	CodeTaken(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, tenant *uuid.UUID, activeOnly bool) ([]Exam, error)
	Update(ctx context.Context, e *Exam) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateAccessCode(ctx context.Context, c *AccessCode) error
	AccessCodeTaken(ctx context.Context, code string) (bool, error)
	ListAccessCodes(ctx context.Context, examID uuid.UUID) ([]AccessCode, error)
	FindAccessCode(ctx context.Context, id uuid.UUID) (*AccessCode, error)
	DeleteAccessCode(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Exam) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Exam, error) {
	var e Exam
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) CodeTaken(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Exam{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *repository) List(ctx context.Context, tenant *uuid.UUID, activeOnly bool) ([]Exam, error) {
	q := r.db.WithContext(ctx).Scopes(tenancy.Scope("school_id", tenant))
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var exams []Exam
	if err := q.Order("created_at DESC").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *repository) Update(ctx context.Context, e *Exam) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// Delete drops the exam row. Attempts, answers and access codes follow
// through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Exam{}, "id = ?", id).Error
}

func (r *repository) CreateAccessCode(ctx context.Context, c *AccessCode) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) AccessCodeTaken(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&AccessCode{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *repository) ListAccessCodes(ctx context.Context, examID uuid.UUID) ([]AccessCode, error) {
	var codes []AccessCode
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("created_at ASC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *repository) FindAccessCode(ctx context.Context, id uuid.UUID) (*AccessCode, error) {
	var c AccessCode
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteAccessCode(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&AccessCode{}, "id = ?", id).Error
}
