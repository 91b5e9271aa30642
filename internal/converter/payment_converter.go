package converter

import (
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
)

// PaymentToResponse converts a Payment entity to PaymentResponse DTO
func PaymentToResponse(p *entity.Payment) *dto.PaymentResponse {
	if p == nil {
		return nil
	}

	response := &dto.PaymentResponse{
		ID:                p.ID,
		ConsultationID:    p.ConsultationID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            string(p.Status),
		ExternalSessionID: p.ExternalSessionID,
		CompletedAt:       p.CompletedAt,
		CreatedAt:         p.CreatedAt,
	}

	if p.Consultation != nil {
		scheduledAt := p.Consultation.ScheduledAt
		response.ScheduledAt = &scheduledAt
		if p.Consultation.Patient != nil {
			response.PatientName = p.Consultation.Patient.FullName
		}
	}

	return response
}

// PaymentsToResponses converts a slice of Payment entities to slice of PaymentResponse DTOs
func PaymentsToResponses(payments []entity.Payment) []dto.PaymentResponse {
	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *PaymentToResponse(&payments[i])
	}
	return responses
}
