package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
)

type User struct {
	ID                    uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username              string     `gorm:"type:text;not null;uniqueIndex" json:"username"`
	PasswordHash          string     `gorm:"type:text;not null" json:"-"`
	Role                  auth.Role  `gorm:"type:text;not null;index" json:"role"`
	SchoolID              *uuid.UUID `gorm:"type:uuid;index" json:"school_id,omitempty"`
	Restricted            bool       `gorm:"not null;default:false" json:"restricted"`
	FullName              string     `gorm:"type:text" json:"full_name"`
	StudentClass          string     `gorm:"type:text" json:"student_class,omitempty"`
	Gender                string     `gorm:"type:text" json:"gender,omitempty"`
	EncryptedTempPassword string     `gorm:"type:text" json:"-"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Claims builds the session principal for u.
func (u *User) Claims() auth.Claims {
	return auth.Claims{
		UserID:   u.ID.String(),
		Role:     u.Role,
		TenantID: auth.OptionalString(u.SchoolID),
	}
}
