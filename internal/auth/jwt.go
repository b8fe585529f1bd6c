package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSecret []byte

var ErrInvalidClaims = errors.New("invalid session claims")

// Claims is the request-scoped principal. It travels in the request context
// and is the only source of identity, role and tenant selection.
type Claims struct {
	UserID         string `json:"user_id"`
	Role           Role   `json:"role"`
	TenantID       string `json:"tenant_id,omitempty"`
	TenantOverride string `json:"tenant_override,omitempty"`
	Scope          Scope  `json:"scope"`
	AttemptID      string `json:"attempt_id,omitempty"`
	jwt.RegisteredClaims
}

func Init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is required")
	}
	jwtSecret = []byte(secret)
	loadSessionSettings()
}

func GenerateJWT(claims Claims, ttl time.Duration) (string, error) {
	if claims.Scope == "" {
		claims.Scope = ScopeFull
	}
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.IsValid() {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}

func (c *Claims) TenantUUID() *uuid.UUID {
	return parseOptional(c.TenantID)
}

func (c *Claims) OverrideUUID() *uuid.UUID {
	return parseOptional(c.TenantOverride)
}

func (c *Claims) IsTemp() bool {
	return c.Scope == ScopeTemp
}

func (c *Claims) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func parseOptional(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// OptionalString renders a nullable uuid for claims fields.
func OptionalString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
