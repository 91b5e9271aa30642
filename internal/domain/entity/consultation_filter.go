package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConsultationFilter is a domain-level filter for querying consultations.
// Used by repository layer to avoid coupling with delivery DTOs.
type ConsultationFilter struct {
	From      *time.Time // inclusive lower bound on scheduled_at
	To        *time.Time // exclusive upper bound on scheduled_at
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *ConsultationStatus
	Limit     int
}

// PatientFilter is a domain-level filter for querying patients.
type PatientFilter struct {
	Query string // ILIKE on email and full name
	Limit int
}
