package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/sirupsen/logrus"
)

const cookieName = "jwt"

type sessionSettings struct {
	domain  string
	secure  bool
	ttl     time.Duration
	tempTTL time.Duration
}

var settings = sessionSettings{ttl: 12 * time.Hour, tempTTL: 4 * time.Hour}

func loadSessionSettings() {
	settings = sessionSettings{
		domain:  config.GetEnv("COOKIE_DOMAIN"),
		secure:  config.GetBool("COOKIE_SECURE", true),
		ttl:     config.GetDuration("SESSION_TTL", 12*time.Hour),
		tempTTL: config.GetDuration("TEMP_SESSION_TTL", 4*time.Hour),
	}
}

func setCookie(w http.ResponseWriter, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if settings.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		Domain:   settings.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   settings.secure,
		SameSite: sameSite,
	})
}

// IssueSession signs a full-scope session and stores it in the cookie.
func IssueSession(w http.ResponseWriter, claims Claims) (string, error) {
	claims.Scope = ScopeFull
	claims.AttemptID = ""
	token, err := GenerateJWT(claims, settings.ttl)
	if err != nil {
		return "", err
	}
	setCookie(w, token, int(settings.ttl.Seconds()))
	return token, nil
}

// IssueTempSession binds a student session to a single attempt.
func IssueTempSession(w http.ResponseWriter, studentID uuid.UUID, tenantID *uuid.UUID, attemptID uuid.UUID) (string, error) {
	token, err := GenerateJWT(Claims{
		UserID:    studentID.String(),
		Role:      RoleStudent,
		TenantID:  OptionalString(tenantID),
		Scope:     ScopeTemp,
		AttemptID: attemptID.String(),
	}, settings.tempTTL)
	if err != nil {
		return "", err
	}
	setCookie(w, token, int(settings.tempTTL.Seconds()))
	return token, nil
}

func EndSession(w http.ResponseWriter) {
	setCookie(w, "", -1)
}

// BoundTo reports whether a temp session was minted for attemptID.
func (c *Claims) BoundTo(attemptID uuid.UUID) bool {
	return c.IsTemp() && c.AttemptID == attemptID.String()
}

// RequireFullSession rejects temp sessions outside the attempt surface.
func RequireFullSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetUserClaimsFromContext(r.Context())
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.IsTemp() {
			config.WithContext(r.Context()).WithField("attempt_id", claims.AttemptID).Warn("Temporary session used outside its attempt")
			http.Error(w, "temporary session is limited to its attempt", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAttemptBinding lets temp sessions through only for the attempt in
// the URL parameter param.
func RequireAttemptBinding(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetUserClaimsFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.IsTemp() && claims.AttemptID != chi.URLParam(r, param) {
				config.WithContext(r.Context()).WithFields(logrus.Fields{
					"bound_attempt": claims.AttemptID,
					"requested":     chi.URLParam(r, param),
				}).Warn("Temporary session used for another attempt")
				http.Error(w, "temporary session is limited to its attempt", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
