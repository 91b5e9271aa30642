package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// PublicBookingRequest books a consultation without authentication.
type PublicBookingRequest struct {
	Patient          PatientRequest `json:"patient"`
	DoctorID         uuid.UUID      `json:"doctor_id" validate:"required"`
	ConsultationType string         `json:"consultation_type" validate:"omitempty,oneof=video phone in_person"`
	Specialty        string         `json:"specialty" validate:"omitempty,max=100"`
	ReasonForVisit   string         `json:"reason_for_visit" validate:"omitempty,max=2000"`
	ScheduledAt      string         `json:"scheduled_at" validate:"required"`
	DurationMinutes  int            `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
}

// CreateConsultationRequest is the staff booking; the patient is either an existing id or inline data.
type CreateConsultationRequest struct {
	PatientID        *uuid.UUID      `json:"patient_id"`
	Patient          *PatientRequest `json:"patient"`
	DoctorID         *uuid.UUID      `json:"doctor_id"`
	ConsultationType string          `json:"consultation_type" validate:"omitempty,oneof=video phone in_person"`
	Specialty        string          `json:"specialty" validate:"omitempty,max=100"`
	ReasonForVisit   string          `json:"reason_for_visit" validate:"omitempty,max=2000"`
	ScheduledAt      string          `json:"scheduled_at" validate:"required"`
	DurationMinutes  int             `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
}

// UpdateConsultationRequest is a partial update. Override forces a status outside the lifecycle graph.
type UpdateConsultationRequest struct {
	DoctorID        *uuid.UUID `json:"doctor_id"`
	ScheduledAt     *string    `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes" validate:"omitempty,max=5000"`
	Override        bool       `json:"override"`
}

type ConsultationFilterRequest struct {
	Day       string // Format: YYYY-MM-DD (UTC)
	DoctorID  string
	PatientID string
	Status    string
	Limit     int
}

// Response DTOs

type DoctorSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty,omitempty"`
}

type ConsultationResponse struct {
	ID               uuid.UUID              `json:"id"`
	PatientID        uuid.UUID              `json:"patient_id"`
	DoctorID         uuid.UUID              `json:"doctor_id"`
	Patient          *PatientResponse       `json:"patient,omitempty"`
	Doctor           *DoctorSummaryResponse `json:"doctor,omitempty"`
	ConsultationType string                 `json:"consultation_type"`
	Specialty        string                 `json:"specialty,omitempty"`
	ReasonForVisit   string                 `json:"reason_for_visit,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	ScheduledAt      time.Time              `json:"scheduled_at"`
	DurationMinutes  int                    `json:"duration_minutes"`
	Status           string                 `json:"status"`
	RoomName         *string                `json:"room_name"`
	RoomURL          *string                `json:"room_url"`
	StartedAt        *time.Time             `json:"started_at,omitempty"`
	EndedAt          *time.Time             `json:"ended_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Total         int                    `json:"total"`
}

type VideoInfoResponse struct {
	ConsultationID uuid.UUID `json:"consultation_id"`
	RoomName       string    `json:"room_name"`
	RoomURL        string    `json:"room_url"`
	Status         string    `json:"status"`
	IsDoctor       bool      `json:"is_doctor"`
}
