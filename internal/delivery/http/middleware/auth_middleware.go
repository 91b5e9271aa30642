package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/jwt"
	"telemed-clinic-backend/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	TokenIDKey     contextKey = "token_id"
	CurrentUserKey contextKey = "current_user"
)

// Authenticator resolves the user behind an access token that passed signature checks.
type Authenticator interface {
	Authenticate(ctx context.Context, userID uuid.UUID, tokenID string) (*entity.User, error)
}

type AuthMiddleware struct {
	jwtService    *jwt.JWTService
	authenticator Authenticator
}

func NewAuthMiddleware(jwtService *jwt.JWTService, authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtService,
		authenticator: authenticator,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ParseAccessToken(parts[1])
		if errors.Is(err, jwt.ErrWrongTokenType) {
			response.Unauthorized(w, "Invalid token type")
			return
		}
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), claims.UserID, claims.TokenID())
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrTokenRevoked):
				response.Unauthorized(w, "Token has been revoked")
			case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrInactiveUser):
				response.Unauthorized(w, "User not found or inactive")
			default:
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		// Sessions opened under a previous role or superuser flag must sign in again.
		if claims.Role != string(user.Role) || claims.Superuser != user.IsSuperuser {
			response.Unauthorized(w, "Account role changed, please sign in again")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID())
		ctx = WithCurrentUser(ctx, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithCurrentUser stores the authenticated user on the context.
func WithCurrentUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, CurrentUserKey, user)
}

// CurrentUserFromContext returns the user loaded by Authenticate
func CurrentUserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(*entity.User)
	return user, ok && user != nil
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}
