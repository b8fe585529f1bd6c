package tenancy

import (
	"errors"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"gorm.io/gorm"
)

var ErrForeignTenant = errors.New("resource belongs to another tenant")

// EffectiveTenant resolves the tenant a request acts in. Superadmins act in
// their selected override, or across all tenants when none is selected; every
// other principal is pinned to its own school.
func EffectiveTenant(c *auth.Claims) *uuid.UUID {
	if c.Role == auth.RoleSuperadmin {
		return c.OverrideUUID()
	}
	return c.TenantUUID()
}

// Unscoped reports whether the principal may see every tenant.
func Unscoped(c *auth.Claims) bool {
	return c.Role == auth.RoleSuperadmin && c.OverrideUUID() == nil
}

// Scope filters a query on column by tenant. A nil tenant leaves the query
// untouched and must only be passed for unscoped principals.
func Scope(column string, tenant *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenant == nil {
			return db
		}
		return db.Where(column+" = ?", *tenant)
	}
}

func SameTenant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// VerifyOwnership checks a caller-supplied resource against the caller's
// effective tenant.
func VerifyOwnership(c *auth.Claims, owner *uuid.UUID) error {
	if Unscoped(c) {
		return nil
	}
	tenant := EffectiveTenant(c)
	if tenant == nil || owner == nil || *tenant != *owner {
		return ErrForeignTenant
	}
	return nil
}
