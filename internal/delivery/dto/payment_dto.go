package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CheckoutSessionRequest struct {
	ConsultationID uuid.UUID `json:"consultation_id" validate:"required"`
	SuccessURL     string    `json:"success_url" validate:"omitempty,url"`
	CancelURL      string    `json:"cancel_url" validate:"omitempty,url"`
}

// Response DTOs

type CheckoutSessionResponse struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	SessionID   string          `json:"session_id"`
	CheckoutURL string          `json:"checkout_url"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}

type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	ConsultationID    uuid.UUID       `json:"consultation_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	ExternalSessionID *string         `json:"external_session_id,omitempty"`
	PatientName       string          `json:"patient_name,omitempty"`
	ScheduledAt       *time.Time      `json:"scheduled_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
}

// WebhookResponse acknowledges a processor delivery.
type WebhookResponse struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id,omitempty"`
	Outcome  string `json:"outcome"`
}
