package converter

import (
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:        patient.ID,
		FullName:  patient.FullName,
		Email:     patient.Email,
		Phone:     patient.Phone,
		CreatedAt: patient.CreatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}

// PatientsWithStatsToResponses joins patients with their record statistics
func PatientsWithStatsToResponses(patients []entity.Patient, stats []entity.PatientRecordStats) []dto.PatientWithStatsResponse {
	byPatient := make(map[string]entity.PatientRecordStats, len(stats))
	for _, s := range stats {
		byPatient[s.PatientID.String()] = s
	}

	responses := make([]dto.PatientWithStatsResponse, len(patients))
	for i := range patients {
		responses[i] = dto.PatientWithStatsResponse{PatientResponse: *PatientToResponse(&patients[i])}
		if s, ok := byPatient[patients[i].ID.String()]; ok {
			responses[i].RecordsCount = s.RecordsCount
			responses[i].LatestRecordAt = s.LatestRecordAt
		}
	}
	return responses
}
