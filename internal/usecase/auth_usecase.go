package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"telemed-clinic-backend/internal/converter"
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"
	"telemed-clinic-backend/internal/infrastructure/database"
	"telemed-clinic-backend/internal/service"
	"telemed-clinic-backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrSamePassword       = errors.New("new password must differ from the current password")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor *entity.User, req *dto.ChangePasswordRequest) error
	// Authenticate resolves the user behind a validated access token.
	Authenticate(ctx context.Context, userID uuid.UUID, tokenID string) (*entity.User, error)
}

type authUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	auditService service.AuditService
}

func NewAuthUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		auditService: auditService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(u.tx.DB(ctx), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrInactiveUser
	}

	err = u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := u.userRepo.UpdateLastLogin(tx, user.ID, now); err != nil {
			u.log.Warnf("Failed to update last login: %+v", err)
			return err
		}
		user.LastLogin = &now
		return u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil)
	})
	if err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	pair, err := u.jwtService.IssuePair(jwt.Subject{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Superuser: user.IsSuperuser,
	})
	if err != nil {
		u.log.Warnf("Failed to generate tokens: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.StoreAccess(ctx, user.ID, pair.AccessTokenID, pair.AccessExpiry); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.StoreRefresh(ctx, user.ID, pair.RefreshTokenID, pair.RefreshExpiry); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:            pair.AccessToken,
		RefreshToken:           pair.RefreshToken,
		TokenType:              "bearer",
		ExpiresIn:              int64(pair.AccessExpiry.Seconds()),
		User:                   converter.UserToResponse(user),
		DashboardURL:           user.DashboardPath(),
		RequiresPasswordChange: user.IsFirstLogin,
	}, nil
}

// Logout revokes the current access token and, when a valid refresh token of the
// same user is supplied, that refresh token as well.
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error {
	refreshTokenID := ""
	if refreshToken != "" {
		claims, err := u.jwtService.ParseRefreshToken(refreshToken)
		if err == nil && claims.UserID == userID {
			refreshTokenID = claims.TokenID()
		}
	}

	if err := u.tokenStore.Revoke(ctx, userID, accessTokenID, refreshTokenID); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Consuming the key makes every refresh token single-use.
	ok, err := u.tokenStore.ConsumeRefresh(ctx, claims.UserID, claims.TokenID())
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !ok {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(u.tx.DB(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.Active() {
		return nil, ErrInvalidToken
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.tx.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// ChangePassword replaces the password, clears the first-login flag and signs the user
// out everywhere.
func (u *authUsecase) ChangePassword(ctx context.Context, actor *entity.User, req *dto.ChangePasswordRequest) error {
	if err := bcrypt.CompareHashAndPassword([]byte(actor.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return ErrSamePassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	err = u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByID(tx, actor.ID)
		if err != nil {
			u.log.Warnf("Failed to find user by ID: %+v", err)
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		user.Password = string(hashedPassword)
		user.IsFirstLogin = false
		if err := u.userRepo.Update(tx, user); err != nil {
			u.log.Warnf("Failed to update password: %+v", err)
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, &user.ID, entity.AuditActionPasswordChange, "user", user.ID.String(), nil, nil)
	})
	if err != nil {
		return err
	}

	if err := u.tokenStore.RevokeAll(ctx, actor.ID); err != nil {
		u.log.Warnf("Failed to revoke tokens after password change: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) Authenticate(ctx context.Context, userID uuid.UUID, tokenID string) (*entity.User, error) {
	valid, err := u.tokenStore.IsAccessValid(ctx, userID, tokenID)
	if err != nil {
		u.log.Warnf("Failed to check token validity: %+v", err)
		return nil, err
	}
	if !valid {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(u.tx.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active() {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
