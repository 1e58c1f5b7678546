package middleware

import (
	"context"
	"errors"
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"
	"atelier-backend/pkg/utils"
)

// AuthMiddleware verifies the access token issued by the hosted auth service
// and stores the caller as a *domain.User in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil {
			msg := "Unauthorized: Invalid token"
			if errors.Is(err, utils.ErrNoToken) {
				msg = "Unauthorized: No token provided"
			}
			utils.WriteError(w, http.StatusUnauthorized, msg)
			return
		}

		// Claims are trusted as-is; accounts live in the auth service.
		user := &domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		ctx = logger.WithField(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated caller, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(domain.UserContextKey).(*domain.User)
	return user
}
