package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

type LoginDTO struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type RegisterDTO struct {
	Username         string `json:"username" validate:"required,min=3,max=100"`
	Password         string `json:"password" validate:"required,min=6,max=200"`
	FullName         string `json:"full_name" validate:"required,max=200"`
	StudentClass     string `json:"student_class" validate:"max=50"`
	Gender           string `json:"gender" validate:"omitempty,oneof=male female other"`
	RegistrationCode string `json:"registration_code" validate:"required"`
}

// CreateStudentDTO leaves Password empty to have a six digit temporary
// password generated.
type CreateStudentDTO struct {
	Username     string `json:"username" validate:"required,min=3,max=100"`
	Password     string `json:"password" validate:"omitempty,min=6,max=200"`
	FullName     string `json:"full_name" validate:"required,max=200"`
	StudentClass string `json:"student_class" validate:"max=50"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type CreateAdminDTO struct {
	Username string    `json:"username" validate:"required,min=3,max=100"`
	Password string    `json:"password" validate:"required,min=8,max=200"`
	FullName string    `json:"full_name" validate:"required,max=200"`
	SchoolID uuid.UUID `json:"school_id" validate:"required"`
}

type SetRestrictionDTO struct {
	Restricted *bool `json:"restricted" validate:"required"`
}

type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Role         auth.Role  `json:"role"`
	SchoolID     *uuid.UUID `json:"school_id,omitempty"`
	FullName     string     `json:"full_name"`
	StudentClass string     `json:"student_class,omitempty"`
	Gender       string     `json:"gender,omitempty"`
	Restricted   bool       `json:"restricted"`
	TempPassword string     `json:"temp_password,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		SchoolID:     u.SchoolID,
		FullName:     u.FullName,
		StudentClass: u.StudentClass,
		Gender:       u.Gender,
		Restricted:   u.Restricted,
		CreatedAt:    u.CreatedAt,
	}
}
