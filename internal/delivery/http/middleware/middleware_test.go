package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telemed-clinic-backend/config"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	user *entity.User
	err  error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, userID uuid.UUID, tokenID string) (*entity.User, error) {
	return s.user, s.err
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUserFromContext(r.Context())
		require.True(t, ok)
		tokenID, ok := GetTokenIDFromContext(r.Context())
		require.True(t, ok)
		assert.NotEmpty(t, tokenID)
		w.Write([]byte(user.Email))
	})
}

func TestAuthenticate(t *testing.T) {
	jwtService := newJWT()
	user := &entity.User{ID: uuid.New(), Email: "dana@clinic.example", Role: entity.RoleSpecialist}
	pair, err := jwtService.IssuePair(jwt.Subject{UserID: user.ID, Email: user.Email, Role: string(user.Role)})
	require.NoError(t, err)
	access, refresh := pair.AccessToken, pair.RefreshToken
	promoted := &entity.User{ID: user.ID, Email: user.Email, Role: entity.RoleMedicalAdmin}
	elevated := &entity.User{ID: user.ID, Email: user.Email, Role: entity.RoleSpecialist, IsSuperuser: true}

	tests := []struct {
		name   string
		header string
		auth   *stubAuthenticator
		want   int
	}{
		{"missing header", "", &stubAuthenticator{user: user}, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, &stubAuthenticator{user: user}, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", &stubAuthenticator{user: user}, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, &stubAuthenticator{user: user}, http.StatusUnauthorized},
		{"revoked", "Bearer " + access, &stubAuthenticator{err: usecase.ErrTokenRevoked}, http.StatusUnauthorized},
		{"inactive", "Bearer " + access, &stubAuthenticator{err: usecase.ErrInactiveUser}, http.StatusUnauthorized},
		{"store down", "Bearer " + access, &stubAuthenticator{err: assert.AnError}, http.StatusInternalServerError},
		{"role changed", "Bearer " + access, &stubAuthenticator{user: promoted}, http.StatusUnauthorized},
		{"superuser changed", "Bearer " + access, &stubAuthenticator{user: elevated}, http.StatusUnauthorized},
		{"ok", "Bearer " + access, &stubAuthenticator{user: user}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddleware(jwtService, tt.auth)
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(echoUser(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, user.Email, rec.Body.String())
			}
		})
	}
}

func TestRequireCapability(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	guarded := RequireMedicalUser(next)

	serve := func(user *entity.User) int {
		req := httptest.NewRequest(http.MethodGet, "/doctor/patients", nil)
		if user != nil {
			req = req.WithContext(WithCurrentUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&entity.User{Role: entity.RoleReception}))
	assert.Equal(t, http.StatusNoContent, serve(&entity.User{Role: entity.RoleSpecialist}))
	assert.Equal(t, http.StatusNoContent, serve(&entity.User{Role: entity.RoleAdministration, IsMedicalProfessional: true}))
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := NewCORSMiddleware().Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/consultations", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
