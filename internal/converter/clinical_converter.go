package converter

import (
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
)

// ClinicalNoteFromRequest maps request fields onto the entity note
func ClinicalNoteFromRequest(req dto.ClinicalNoteRequest) entity.ClinicalNote {
	return entity.ClinicalNote{
		ChiefComplaint: req.ChiefComplaint,
		Background:     req.Background,
		Assessment:     req.Assessment,
		Plan:           req.Plan,
		Allergies:      req.Allergies,
		Medications:    req.Medications,
	}
}

// ApplyClinicalNoteUpdate overwrites the note fields set in the request
func ApplyClinicalNoteUpdate(n *entity.ClinicalNote, req dto.UpdateClinicalRecordRequest) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&n.ChiefComplaint, req.ChiefComplaint)
	set(&n.Background, req.Background)
	set(&n.Assessment, req.Assessment)
	set(&n.Plan, req.Plan)
	set(&n.Allergies, req.Allergies)
	set(&n.Medications, req.Medications)
}

func clinicalNoteToResponse(n entity.ClinicalNote) dto.ClinicalNoteResponse {
	return dto.ClinicalNoteResponse{
		ChiefComplaint: n.ChiefComplaint,
		Background:     n.Background,
		Assessment:     n.Assessment,
		Plan:           n.Plan,
		Allergies:      n.Allergies,
		Medications:    n.Medications,
	}
}

// ClinicalRecordToResponse converts a ClinicalRecord entity to ClinicalRecordResponse DTO
func ClinicalRecordToResponse(r *entity.ClinicalRecord) *dto.ClinicalRecordResponse {
	if r == nil {
		return nil
	}
	return &dto.ClinicalRecordResponse{
		ID:                   r.ID,
		PatientID:            r.PatientID,
		AuthorID:             r.AuthorID,
		ClinicalNoteResponse: clinicalNoteToResponse(r.ClinicalNote),
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// ClinicalRecordsToResponses converts a slice of ClinicalRecord entities to slice of ClinicalRecordResponse DTOs
func ClinicalRecordsToResponses(records []entity.ClinicalRecord) []dto.ClinicalRecordResponse {
	responses := make([]dto.ClinicalRecordResponse, len(records))
	for i := range records {
		responses[i] = *ClinicalRecordToResponse(&records[i])
	}
	return responses
}

// ClinicalTemplateToResponse converts a ClinicalTemplate entity to ClinicalTemplateResponse DTO
func ClinicalTemplateToResponse(t *entity.ClinicalTemplate) *dto.ClinicalTemplateResponse {
	if t == nil {
		return nil
	}
	return &dto.ClinicalTemplateResponse{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		CreatedByID:          t.CreatedByID,
		ClinicalNoteResponse: clinicalNoteToResponse(t.ClinicalNote),
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// ClinicalTemplatesToResponses converts a slice of ClinicalTemplate entities to slice of ClinicalTemplateResponse DTOs
func ClinicalTemplatesToResponses(templates []entity.ClinicalTemplate) []dto.ClinicalTemplateResponse {
	responses := make([]dto.ClinicalTemplateResponse, len(templates))
	for i := range templates {
		responses[i] = *ClinicalTemplateToResponse(&templates[i])
	}
	return responses
}
