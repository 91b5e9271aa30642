package dto

import "github.com/google/uuid"

// Request DTOs

// RegisterStaffRequest registers a staff account. A temporary password is generated when Password is empty.
type RegisterStaffRequest struct {
	Email                 string  `json:"email" validate:"required,email"`
	FullName              string  `json:"full_name" validate:"required,min=2,max=255"`
	Password              string  `json:"password" validate:"omitempty,min=8,max=72"`
	Role                  string  `json:"role" validate:"required,oneof=specialist medical_admin administration reception it_admin"`
	Specialty             string  `json:"specialty" validate:"omitempty,max=100"`
	LicenseNumber         *string `json:"license_number" validate:"omitempty,min=3,max=50"`
	IsMedicalProfessional *bool   `json:"is_medical_professional"`
}

type UpdateStaffRequest struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Role          *string `json:"role" validate:"omitempty,oneof=specialist medical_admin administration reception it_admin"`
	Specialty     *string `json:"specialty" validate:"omitempty,max=100"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,min=3,max=50"`
	IsActive      *bool   `json:"is_active"`
}

// Response DTOs

// StaffRegistrationResponse never carries the temporary password; it is only emailed.
type StaffRegistrationResponse struct {
	User                    *UserResponse `json:"user"`
	TemporaryPasswordIssued bool          `json:"temporary_password_issued"`
}

// DoctorPublicResponse is the public directory view of a medical professional.
type DoctorPublicResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Specialty string    `json:"specialty,omitempty"`
}
