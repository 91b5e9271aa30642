package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type ClinicalNoteRequest struct {
	ChiefComplaint string `json:"chief_complaint" validate:"omitempty,max=5000"`
	Background     string `json:"background" validate:"omitempty,max=10000"`
	Assessment     string `json:"assessment" validate:"omitempty,max=10000"`
	Plan           string `json:"plan" validate:"omitempty,max=10000"`
	Allergies      string `json:"allergies" validate:"omitempty,max=5000"`
	Medications    string `json:"medications" validate:"omitempty,max=5000"`
}

type CreateClinicalRecordRequest struct {
	ClinicalNoteRequest
	TemplateID *uuid.UUID `json:"template_id"`
}

// UpdateClinicalRecordRequest changes only the fields that are present.
type UpdateClinicalRecordRequest struct {
	ChiefComplaint *string `json:"chief_complaint" validate:"omitempty,max=5000"`
	Background     *string `json:"background" validate:"omitempty,max=10000"`
	Assessment     *string `json:"assessment" validate:"omitempty,max=10000"`
	Plan           *string `json:"plan" validate:"omitempty,max=10000"`
	Allergies      *string `json:"allergies" validate:"omitempty,max=5000"`
	Medications    *string `json:"medications" validate:"omitempty,max=5000"`
}

type ClinicalTemplateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	ClinicalNoteRequest
}

// Response DTOs

type ClinicalNoteResponse struct {
	ChiefComplaint string `json:"chief_complaint"`
	Background     string `json:"background"`
	Assessment     string `json:"assessment"`
	Plan           string `json:"plan"`
	Allergies      string `json:"allergies"`
	Medications    string `json:"medications"`
}

type ClinicalRecordResponse struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	ClinicalNoteResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PatientHistoryResponse struct {
	Patient PatientResponse          `json:"patient"`
	Records []ClinicalRecordResponse `json:"records"`
}

type ClinicalTemplateResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedByID uuid.UUID `json:"created_by_id"`
	ClinicalNoteResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentResponse is a rendered binary document.
type DocumentResponse struct {
	Filename    string
	ContentType string
	Content     []byte
}
