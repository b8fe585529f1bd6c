package tenancy

import (
	"time"

	"github.com/google/uuid"
)

// School is a tenant. Every non-superadmin principal belongs to exactly one.
type School struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name             string    `gorm:"type:text;not null" json:"name"`
	RegistrationCode string    `gorm:"type:text;not null;uniqueIndex" json:"registration_code"`
	Restricted       bool      `gorm:"not null;default:false" json:"restricted"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
