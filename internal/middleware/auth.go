package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/pkg/jwt"
	"github.com/orderhub/orderhub-api/internal/pkg/response"
)

// Auth returns middleware that validates JWT and resolves the actor
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			actor := user.Actor{
				UserID:  claims.UserID,
				IsAdmin: claims.Role == string(user.RoleAdmin),
			}

			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), actor)))
		})
	}
}

// GetActor extracts the actor from context
func GetActor(ctx context.Context) user.Actor {
	return user.FromContext(ctx)
}

// WithActor attaches an actor to a context. Used by tests.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return user.WithActor(ctx, actor)
}

// RequireAdmin returns middleware that rejects non-admin callers
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetActor(r.Context()).IsAdmin {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
