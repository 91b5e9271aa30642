package jwt

import (
	"errors"
	"fmt"
	"time"

	"telemed-clinic-backend/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

const issuer = "telemed-clinic"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Subject is the staff identity a token pair is issued for.
type Subject struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	Superuser bool
}

// Claims carries the role the session was opened with, so a role change can retire
// sessions issued before it. The token id is the registered jti.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Superuser bool      `json:"superuser,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) TokenID() string {
	return c.ID
}

// TokenPair is one login: an access token, its refresh token and their lifetimes.
type TokenPair struct {
	AccessToken    string
	AccessTokenID  string
	AccessExpiry   time.Duration
	RefreshToken   string
	RefreshTokenID string
	RefreshExpiry  time.Duration
}

type JWTService struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg, now: time.Now}
}

func (s *JWTService) IssuePair(sub Subject) (*TokenPair, error) {
	now := s.now()
	access, accessID, err := s.sign(sub, AccessToken, s.config.AccessExpiry, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshID, err := s.sign(sub, RefreshToken, s.config.RefreshExpiry, now)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:    access,
		AccessTokenID:  accessID,
		AccessExpiry:   s.config.AccessExpiry,
		RefreshToken:   refresh,
		RefreshTokenID: refreshID,
		RefreshExpiry:  s.config.RefreshExpiry,
	}, nil
}

func (s *JWTService) sign(sub Subject, kind TokenType, ttl time.Duration, now time.Time) (string, string, error) {
	tokenID := uuid.New().String()
	claims := Claims{
		UserID:    sub.UserID,
		Email:     sub.Email,
		Role:      sub.Role,
		Superuser: sub.Superuser,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    issuer,
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}
	return signed, tokenID, nil
}

func (s *JWTService) ParseAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, AccessToken)
}

func (s *JWTService) ParseRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, RefreshToken)
}

func (s *JWTService) parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
