package tenancy

import "github.com/google/uuid"

type CreateSchoolDTO struct {
	Name             string `json:"name" validate:"required,max=200"`
	RegistrationCode string `json:"registration_code" validate:"required,min=4,max=64"`
}

type SetRestrictionDTO struct {
	Restricted *bool `json:"restricted" validate:"required"`
}

// SelectTenantDTO clears the override when SchoolID is null.
type SelectTenantDTO struct {
	SchoolID *uuid.UUID `json:"school_id"`
}
