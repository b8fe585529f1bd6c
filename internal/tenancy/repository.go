package tenancy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchoolRepository interface {
	Create(ctx context.Context, s *School) error
	List(ctx context.Context) ([]School, error)
	FindByID(ctx context.Context, id uuid.UUID) (*School, error)
	FindByRegistrationCode(ctx context.Context, code string) (*School, error)
	Update(ctx context.Context, s *School) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountMembers(ctx context.Context, id uuid.UUID) (int64, error)
}

type schoolRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Create(ctx context.Context, s *School) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *schoolRepository) List(ctx context.Context) ([]School, error) {
	var schools []School
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *schoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*School, error) {
	var s School
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *schoolRepository) FindByRegistrationCode(ctx context.Context, code string) (*School, error) {
	var s School
	if err := r.db.WithContext(ctx).First(&s, "registration_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *schoolRepository) Update(ctx context.Context, s *School) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *schoolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&School{}, "id = ?", id).Error
}

func (r *schoolRepository) CountMembers(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("users").Where("school_id = ?", id).Count(&n).Error
	return n, err
}
