package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken            string        `json:"access_token"`
	RefreshToken           string        `json:"refresh_token"`
	TokenType              string        `json:"token_type"`
	ExpiresIn              int64         `json:"expires_in"`
	User                   *UserResponse `json:"user,omitempty"`
	DashboardURL           string        `json:"dashboard_url,omitempty"`
	RequiresPasswordChange bool          `json:"requires_password_change"`
}

type UserResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	FullName              string     `json:"full_name"`
	Role                  string     `json:"role"`
	Specialty             string     `json:"specialty,omitempty"`
	LicenseNumber         *string    `json:"license_number,omitempty"`
	IsActive              bool       `json:"is_active"`
	IsSuperuser           bool       `json:"is_superuser"`
	IsMedicalProfessional bool       `json:"is_medical_professional"`
	IsFirstLogin          bool       `json:"is_first_login"`
	LastLogin             *time.Time `json:"last_login,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
