package converter

import (
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
)

// ConsultationToResponse converts a Consultation entity to ConsultationResponse DTO
// Includes Patient and Doctor if they are loaded
func ConsultationToResponse(c *entity.Consultation) *dto.ConsultationResponse {
	if c == nil {
		return nil
	}

	response := &dto.ConsultationResponse{
		ID:               c.ID,
		PatientID:        c.PatientID,
		DoctorID:         c.DoctorID,
		Patient:          PatientToResponse(c.Patient),
		ConsultationType: string(c.ConsultationType),
		Specialty:        c.Specialty,
		ReasonForVisit:   c.ReasonForVisit,
		Notes:            c.Notes,
		ScheduledAt:      c.ScheduledAt,
		DurationMinutes:  c.DurationMinutes,
		Status:           string(c.Status),
		RoomName:         c.RoomName,
		RoomURL:          c.RoomURL,
		StartedAt:        c.StartedAt,
		EndedAt:          c.EndedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}

	if c.Doctor != nil {
		response.Doctor = &dto.DoctorSummaryResponse{
			ID:        c.Doctor.ID,
			FullName:  c.Doctor.FullName,
			Email:     c.Doctor.Email,
			Specialty: c.Doctor.Specialty,
		}
	}

	return response
}

// ConsultationsToResponses converts a slice of Consultation entities to slice of ConsultationResponse DTOs
func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i := range consultations {
		responses[i] = *ConsultationToResponse(&consultations[i])
	}
	return responses
}
