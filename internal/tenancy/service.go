package tenancy

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	ErrSchoolNotFound   = errors.New("school not found")
	ErrSchoolHasMembers = errors.New("school still has members")
	ErrDuplicateCode    = errors.New("registration code already in use")
	ErrSuperadminOnly   = errors.New("only superadmins can manage schools")
)

type Service interface {
	CreateSchool(ctx context.Context, dto CreateSchoolDTO) (*School, error)
	ListSchools(ctx context.Context) ([]School, error)
	SetRestricted(ctx context.Context, id uuid.UUID, restricted bool) (*School, error)
	DeleteSchool(ctx context.Context, id uuid.UUID) error
	// SelectTenant returns the caller's claims with the override replaced.
	SelectTenant(ctx context.Context, schoolID *uuid.UUID) (*auth.Claims, error)
}

type service struct {
	repo SchoolRepository
}

func NewService(repo SchoolRepository) Service {
	return &service{repo: repo}
}

func requireSuperadmin(ctx context.Context, log logrus.FieldLogger, action string) (*auth.Claims, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if claims.Role != auth.RoleSuperadmin {
		log.WithField("role", claims.Role).Warnf("Non-superadmin tried to %s", action)
		return nil, ErrSuperadminOnly
	}
	return claims, nil
}

func (s *service) CreateSchool(ctx context.Context, dto CreateSchoolDTO) (*School, error) {
	log := config.WithContext(ctx)
	if _, err := requireSuperadmin(ctx, log, "create school"); err != nil {
		return nil, err
	}

	school := &School{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(dto.Name),
		RegistrationCode: strings.TrimSpace(dto.RegistrationCode),
	}
	if err := s.repo.Create(ctx, school); err != nil {
		if config.IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		log.WithError(err).Error("Failed to create school")
		return nil, err
	}

	log.WithField("school_id", school.ID).Info("School created")
	return school, nil
}

func (s *service) ListSchools(ctx context.Context) ([]School, error) {
	log := config.WithContext(ctx)
	if _, err := requireSuperadmin(ctx, log, "list schools"); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *service) SetRestricted(ctx context.Context, id uuid.UUID, restricted bool) (*School, error) {
	log := config.WithContext(ctx)
	if _, err := requireSuperadmin(ctx, log, "restrict school"); err != nil {
		return nil, err
	}

	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load school")
		return nil, err
	}
	if school == nil {
		return nil, ErrSchoolNotFound
	}

	school.Restricted = restricted
	if err := s.repo.Update(ctx, school); err != nil {
		log.WithError(err).Error("Failed to update school restriction")
		return nil, err
	}

	log.WithFields(logrus.Fields{"school_id": id, "restricted": restricted}).Info("School restriction changed")
	return school, nil
}

func (s *service) DeleteSchool(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)
	if _, err := requireSuperadmin(ctx, log, "delete school"); err != nil {
		return err
	}

	n, err := s.repo.CountMembers(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to count school members")
		return err
	}
	if n > 0 {
		return ErrSchoolHasMembers
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SelectTenant(ctx context.Context, schoolID *uuid.UUID) (*auth.Claims, error) {
	log := config.WithContext(ctx)
	claims, err := requireSuperadmin(ctx, log, "select tenant")
	if err != nil {
		return nil, err
	}

	if schoolID != nil {
		school, err := s.repo.FindByID(ctx, *schoolID)
		if err != nil {
			return nil, err
		}
		if school == nil {
			return nil, ErrSchoolNotFound
		}
	}

	next := *claims
	next.TenantOverride = auth.OptionalString(schoolID)
	log.WithField("tenant_override", next.TenantOverride).Info("Superadmin switched tenant")
	return &next, nil
}
