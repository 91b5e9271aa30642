package converter

import (
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:                    user.ID,
		Email:                 user.Email,
		FullName:              user.FullName,
		Role:                  string(user.Role),
		Specialty:             user.Specialty,
		LicenseNumber:         user.LicenseNumber,
		IsActive:              user.Active(),
		IsSuperuser:           user.IsSuperuser,
		IsMedicalProfessional: user.IsMedicalProfessional,
		IsFirstLogin:          user.IsFirstLogin,
		LastLogin:             user.LastLogin,
		CreatedAt:             user.CreatedAt,
		UpdatedAt:             user.UpdatedAt,
	}
}

// UsersToResponses converts a slice of User entities to slice of UserResponse DTOs
func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *UserToResponse(&users[i])
	}
	return responses
}

// DoctorsToPublicResponses exposes only the public directory fields
func DoctorsToPublicResponses(users []entity.User) []dto.DoctorPublicResponse {
	responses := make([]dto.DoctorPublicResponse, len(users))
	for i, u := range users {
		responses[i] = dto.DoctorPublicResponse{
			ID:        u.ID,
			FullName:  u.FullName,
			Specialty: u.Specialty,
		}
	}
	return responses
}
