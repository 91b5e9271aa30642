package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type PatientRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

type PatientFilterRequest struct {
	Query string
	Limit int
}

// Response DTOs

type PatientResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PatientWithStatsResponse struct {
	PatientResponse
	RecordsCount   int64      `json:"records_count"`
	LatestRecordAt *time.Time `json:"latest_record_at,omitempty"`
}
