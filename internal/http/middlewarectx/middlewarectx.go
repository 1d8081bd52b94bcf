// Package middlewarectx contains the request-scoped middleware: bearer
// token authentication, role gating and rate limiting. The resolved
// caller identity travels in the request context.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/jwt"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
)

type ctxKey int

const identityKey ctxKey = 0

// Identity returns the caller identity attached by Auth, if any.
func Identity(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// WithIdentity attaches a caller identity to ctx. Exported for handler
// tests.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// UserLoader resolves the account behind a token subject. The account
// is loaded on every request so role changes and deactivation take
// effect immediately.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}

// Auth validates the bearer access token, loads the account and
// attaches the caller identity to the request context.
func Auth(log *slog.Logger, maker jwt.Maker, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, r, "missing authorization header")
				return
			}
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				unauthorized(w, r, "invalid authorization header")
				return
			}

			claims, err := maker.ParseAccessToken(tokenStr)
			if err != nil {
				unauthorized(w, r, "invalid or expired token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				unauthorized(w, r, "invalid or expired token")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				log.Warn("failed to load token subject", sl.Err(err), slog.Int64("user_id", userID))
				unauthorized(w, r, "invalid or expired token")
				return
			}
			if !user.Activated {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("account is deactivated"))
				return
			}

			identity := models.Identity{
				UserID:   user.ID,
				Email:    user.Email,
				Role:     user.Role,
				EditorID: user.EditorID,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRoles rejects callers whose resolved role is not in the set.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := Identity(r.Context())
			if !ok {
				unauthorized(w, r, "missing authorization header")
				return
			}
			if !identity.Role.In(roles...) {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies a global token-bucket limit to the wrapped routes.
func RateLimit(rps rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
