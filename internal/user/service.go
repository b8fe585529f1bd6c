package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRestricted         = errors.New("account is restricted")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrTenantRequired     = errors.New("select a school before managing students")
	ErrUnknownSchool      = errors.New("unknown registration code")
)

type UserService interface {
	Login(ctx context.Context, dto LoginDTO) (*User, error)
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	Me(ctx context.Context) (*User, error)
	CreateStudent(ctx context.Context, dto CreateStudentDTO) (*UserResponse, error)
	ListStudents(ctx context.Context) ([]UserResponse, error)
	DeleteStudent(ctx context.Context, id uuid.UUID) error
	ResetPassword(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	CreateAdmin(ctx context.Context, dto CreateAdminDTO) (*UserResponse, error)
	SetAdminRestricted(ctx context.Context, id uuid.UUID, restricted bool) (*UserResponse, error)
}

type userService struct {
	repo    UserRepository
	schools tenancy.SchoolRepository
}

func NewService(repo UserRepository, schools tenancy.SchoolRepository) UserService {
	return &userService{repo: repo, schools: schools}
}

func claimsFromContext(ctx context.Context, log logrus.FieldLogger, action string) (*auth.Claims, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return nil, err
	}
	return claims, nil
}

// newTempPassword returns six random digits.
func newTempPassword() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *userService) schoolRestricted(ctx context.Context, schoolID *uuid.UUID) (bool, error) {
	if schoolID == nil {
		return false, nil
	}
	school, err := s.schools.FindByID(ctx, *schoolID)
	if err != nil {
		return false, err
	}
	return school != nil && school.Restricted, nil
}

func (s *userService) Login(ctx context.Context, dto LoginDTO) (*User, error) {
	log := config.WithContext(ctx).WithField("username", dto.Username)

	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(dto.Username))
	if err != nil {
		log.WithError(err).Error("Failed to load user for login")
		return nil, err
	}
	if u == nil {
		log.Warn("Login with unknown username")
		return nil, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(u.PasswordHash, dto.Password); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			log.Warn("Login with wrong password")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.Role != auth.RoleSuperadmin {
		restricted, err := s.schoolRestricted(ctx, u.SchoolID)
		if err != nil {
			log.WithError(err).Error("Failed to load school for login")
			return nil, err
		}
		if restricted || (u.Role == auth.RoleAdmin && u.Restricted) {
			log.Warn("Login blocked by restriction")
			return nil, ErrRestricted
		}
	}

	log.WithField("user_id", u.ID).Info("User logged in")
	return u, nil
}

func (s *userService) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	log := config.WithContext(ctx).WithField("username", dto.Username)

	school, err := s.schools.FindByRegistrationCode(ctx, strings.TrimSpace(dto.RegistrationCode))
	if err != nil {
		log.WithError(err).Error("Failed to resolve registration code")
		return nil, err
	}
	if school == nil {
		return nil, ErrUnknownSchool
	}
	if school.Restricted {
		log.WithField("school_id", school.ID).Warn("Registration on restricted school")
		return nil, ErrRestricted
	}

	hash, err := auth.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(dto.Username),
		PasswordHash: hash,
		Role:         auth.RoleStudent,
		SchoolID:     &school.ID,
		FullName:     strings.TrimSpace(dto.FullName),
		StudentClass: strings.TrimSpace(dto.StudentClass),
		Gender:       dto.Gender,
	}
	if err := s.create(ctx, log, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) create(ctx context.Context, log logrus.FieldLogger, u *User) error {
	if err := s.repo.Create(ctx, u); err != nil {
		if config.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		log.WithError(err).Error("Failed to create user")
		return err
	}
	log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("User created")
	return nil
}

func (s *userService) Me(ctx context.Context) (*User, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "load profile")
	if err != nil {
		return nil, err
	}
	id, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) CreateStudent(ctx context.Context, dto CreateStudentDTO) (*UserResponse, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "create student")
	if err != nil {
		return nil, err
	}
	tenant := tenancy.EffectiveTenant(claims)
	if tenant == nil {
		return nil, ErrTenantRequired
	}

	u := &User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(dto.Username),
		Role:         auth.RoleStudent,
		SchoolID:     tenant,
		FullName:     strings.TrimSpace(dto.FullName),
		StudentClass: strings.TrimSpace(dto.StudentClass),
		Gender:       dto.Gender,
	}

	password := dto.Password
	if password == "" {
		if password, err = s.assignTempPassword(u); err != nil {
			log.WithError(err).Error("Failed to generate temporary password")
			return nil, err
		}
	} else if u.PasswordHash, err = auth.HashPassword(password); err != nil {
		return nil, err
	}

	if err := s.create(ctx, log, u); err != nil {
		return nil, err
	}

	resp := ToResponse(u)
	if u.EncryptedTempPassword != "" {
		resp.TempPassword = password
	}
	return &resp, nil
}

// assignTempPassword sets a fresh hash and keeps an encrypted copy so admins
// can hand the password out later.
func (s *userService) assignTempPassword(u *User) (string, error) {
	password, err := newTempPassword()
	if err != nil {
		return "", err
	}
	if u.PasswordHash, err = auth.HashPassword(password); err != nil {
		return "", err
	}
	if u.EncryptedTempPassword, err = config.Encrypt(password); err != nil {
		return "", err
	}
	return password, nil
}

func (s *userService) ListStudents(ctx context.Context) ([]UserResponse, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "list students")
	if err != nil {
		return nil, err
	}

	students, err := s.repo.ListByRole(ctx, auth.RoleStudent, tenancy.EffectiveTenant(claims))
	if err != nil {
		log.WithError(err).Error("Failed to list students")
		return nil, err
	}

	out := make([]UserResponse, 0, len(students))
	for i := range students {
		resp := ToResponse(&students[i])
		if students[i].EncryptedTempPassword != "" {
			plain, err := config.Decrypt(students[i].EncryptedTempPassword)
			if err != nil {
				log.WithError(err).WithField("user_id", students[i].ID).Warn("Stored temporary password is unreadable")
			}
			resp.TempPassword = plain
		}
		out = append(out, resp)
	}
	return out, nil
}

// ownedStudent loads a student and checks it lives in the caller's tenant.
// Foreign students are reported as missing.
func (s *userService) ownedStudent(ctx context.Context, log logrus.FieldLogger, id uuid.UUID, action string) (*User, error) {
	claims, err := claimsFromContext(ctx, log, action)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load student")
		return nil, err
	}
	if u == nil || u.Role != auth.RoleStudent {
		return nil, ErrUserNotFound
	}
	if err := tenancy.VerifyOwnership(claims, u.SchoolID); err != nil {
		log.WithField("student_id", id).Warnf("Cross-tenant attempt to %s", action)
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)
	if _, err := s.ownedStudent(ctx, log, id, "delete student"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete student")
		return err
	}
	log.WithField("student_id", id).Info("Student deleted")
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	log := config.WithContext(ctx)
	u, err := s.ownedStudent(ctx, log, id, "reset password")
	if err != nil {
		return nil, err
	}

	password, err := s.assignTempPassword(u)
	if err != nil {
		log.WithError(err).Error("Failed to generate temporary password")
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		log.WithError(err).Error("Failed to store reset password")
		return nil, err
	}

	resp := ToResponse(u)
	resp.TempPassword = password
	log.WithField("student_id", id).Info("Student password reset")
	return &resp, nil
}

func (s *userService) CreateAdmin(ctx context.Context, dto CreateAdminDTO) (*UserResponse, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "create admin")
	if err != nil {
		return nil, err
	}
	if claims.Role != auth.RoleSuperadmin {
		return nil, ErrForbidden
	}

	school, err := s.schools.FindByID(ctx, dto.SchoolID)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, tenancy.ErrSchoolNotFound
	}

	hash, err := auth.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(dto.Username),
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		SchoolID:     &school.ID,
		FullName:     strings.TrimSpace(dto.FullName),
	}
	if err := s.create(ctx, log, u); err != nil {
		return nil, err
	}
	resp := ToResponse(u)
	return &resp, nil
}

func (s *userService) SetAdminRestricted(ctx context.Context, id uuid.UUID, restricted bool) (*UserResponse, error) {
	log := config.WithContext(ctx)
	claims, err := claimsFromContext(ctx, log, "restrict admin")
	if err != nil {
		return nil, err
	}
	if claims.Role != auth.RoleSuperadmin {
		return nil, ErrForbidden
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Role != auth.RoleAdmin {
		return nil, ErrUserNotFound
	}

	u.Restricted = restricted
	if err := s.repo.Update(ctx, u); err != nil {
		log.WithError(err).Error("Failed to update admin restriction")
		return nil, err
	}
	log.WithFields(logrus.Fields{"admin_id": id, "restricted": restricted}).Info("Admin restriction changed")
	resp := ToResponse(u)
	return &resp, nil
}
