package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/auth"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
	UserContextKey   contextKey = "user"
	TenantContextKey contextKey = "tenant"
)

// UserFinder loads local profiles by identity-provider subject.
type UserFinder interface {
	FindUserByIdPID(ctx context.Context, idpID string) (*models.User, error)
}

// AuthMiddleware provides session authentication and authorization
type AuthMiddleware struct {
	authService *auth.Service
	users       UserFinder
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		users:       users,
	}
}

// Authenticate validates session tokens and adds the claims to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication for certain endpoints
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				writeError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireMember loads the caller's profile and adds it to the context
func (m *AuthMiddleware) RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		user, err := m.users.FindUserByIdPID(r.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.WithError(err).WithField("subject", claims.Subject).Error("Failed to load user profile")
			}
			writeError(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		setLogTenant(r.Context(), user.TenantID)
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOrganization rejects callers that do not belong to a tenant
func (m *AuthMiddleware) RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		if user.TenantID == "" {
			writeError(w, http.StatusForbidden, "No organization selected")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission middleware checks if the user's role allows the action
func (m *AuthMiddleware) RequirePermission(requiredAction string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}

			if !user.HasPermission(requiredAction) {
				log.WithFields(log.Fields{
					"user_id": user.ID.Hex(),
					"role":    user.Role,
					"action":  requiredAction,
				}).Warn("Permission denied")
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext extracts session claims from request context
func GetClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.Claims)
	return claims, ok
}

// GetUserFromContext extracts the caller's profile from request context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// WithUser returns a context carrying the user, as RequireMember does.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// shouldSkipAuth determines if authentication should be skipped for a given path
func shouldSkipAuth(path string) bool {
	if path == "/health" {
		return true
	}
	return IsSchedulePath(path)
}

// IsSchedulePath reports whether path is /api/<orgId>/schedule.
func IsSchedulePath(path string) bool {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return len(parts) == 3 && parts[0] == "api" && parts[1] != "" && parts[2] == "schedule"
}
