package tenancy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
)

func TestEffectiveTenant(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	tests := []struct {
		name   string
		claims auth.Claims
		want   *uuid.UUID
	}{
		{"AdminUsesOwnSchool", auth.Claims{Role: auth.RoleAdmin, TenantID: own.String()}, &own},
		{"AdminOverrideIgnored", auth.Claims{Role: auth.RoleAdmin, TenantID: own.String(), TenantOverride: other.String()}, &own},
		{"StudentUsesOwnSchool", auth.Claims{Role: auth.RoleStudent, TenantID: own.String()}, &own},
		{"SuperadminWithoutOverride", auth.Claims{Role: auth.RoleSuperadmin}, nil},
		{"SuperadminWithOverride", auth.Claims{Role: auth.RoleSuperadmin, TenantOverride: other.String()}, &other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tenancy.EffectiveTenant(&tt.claims)
			if !tenancy.SameTenant(got, tt.want) {
				t.Errorf("EffectiveTenant = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyOwnership(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	admin := &auth.Claims{Role: auth.RoleAdmin, TenantID: own.String()}
	if err := tenancy.VerifyOwnership(admin, &own); err != nil {
		t.Errorf("own resource rejected: %v", err)
	}
	if err := tenancy.VerifyOwnership(admin, &other); !errors.Is(err, tenancy.ErrForeignTenant) {
		t.Errorf("foreign resource: got %v, want ErrForeignTenant", err)
	}
	if err := tenancy.VerifyOwnership(admin, nil); !errors.Is(err, tenancy.ErrForeignTenant) {
		t.Errorf("unowned resource: got %v, want ErrForeignTenant", err)
	}

	root := &auth.Claims{Role: auth.RoleSuperadmin}
	if err := tenancy.VerifyOwnership(root, &other); err != nil {
		t.Errorf("unscoped superadmin rejected: %v", err)
	}

	scopedRoot := &auth.Claims{Role: auth.RoleSuperadmin, TenantOverride: own.String()}
	if err := tenancy.VerifyOwnership(scopedRoot, &other); !errors.Is(err, tenancy.ErrForeignTenant) {
		t.Errorf("superadmin override should pin to selected tenant, got %v", err)
	}
}

type fakeSchoolRepo struct {
	tenancy.SchoolRepository
	schools map[uuid.UUID]*tenancy.School
}

func (f *fakeSchoolRepo) FindByID(_ context.Context, id uuid.UUID) (*tenancy.School, error) {
	return f.schools[id], nil
}

func TestSelectTenant(t *testing.T) {
	school := &tenancy.School{ID: uuid.New(), Name: "North"}
	svc := tenancy.NewService(&fakeSchoolRepo{schools: map[uuid.UUID]*tenancy.School{school.ID: school}})

	t.Run("SetsOverride", func(t *testing.T) {
		ctx := auth.WithClaims(context.Background(), &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleSuperadmin})
		claims, err := svc.SelectTenant(ctx, &school.ID)
		if err != nil {
			t.Fatalf("SelectTenant failed: %v", err)
		}
		if claims.TenantOverride != school.ID.String() {
			t.Errorf("override = %q, want %s", claims.TenantOverride, school.ID)
		}
	})

	t.Run("ClearsOverride", func(t *testing.T) {
		ctx := auth.WithClaims(context.Background(), &auth.Claims{Role: auth.RoleSuperadmin, TenantOverride: school.ID.String()})
		claims, err := svc.SelectTenant(ctx, nil)
		if err != nil {
			t.Fatalf("SelectTenant failed: %v", err)
		}
		if claims.TenantOverride != "" {
			t.Errorf("override = %q, want cleared", claims.TenantOverride)
		}
	})

	t.Run("UnknownSchool", func(t *testing.T) {
		ctx := auth.WithClaims(context.Background(), &auth.Claims{Role: auth.RoleSuperadmin})
		missing := uuid.New()
		if _, err := svc.SelectTenant(ctx, &missing); !errors.Is(err, tenancy.ErrSchoolNotFound) {
			t.Errorf("got %v, want ErrSchoolNotFound", err)
		}
	})

	t.Run("AdminForbidden", func(t *testing.T) {
		ctx := auth.WithClaims(context.Background(), &auth.Claims{Role: auth.RoleAdmin, TenantID: school.ID.String()})
		if _, err := svc.SelectTenant(ctx, &school.ID); !errors.Is(err, tenancy.ErrSuperadminOnly) {
			t.Errorf("got %v, want ErrSuperadminOnly", err)
		}
	})
}
