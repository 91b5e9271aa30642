package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment represents the single payment bound to a consultation
type Payment struct {
	ID                      uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConsultationID          uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"consultation_id"`
	Amount                  decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency                string              `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Status                  PaymentStatus       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ExternalSessionID       *string             `gorm:"type:varchar(255);uniqueIndex" json:"external_session_id,omitempty"`
	ExternalPaymentIntentID *string             `gorm:"type:varchar(255);uniqueIndex" json:"external_payment_intent_id,omitempty"`
	ExternalCustomerID      *string             `gorm:"type:varchar(255)" json:"external_customer_id,omitempty"`
	RefundAmount            decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"refund_amount,omitempty"`
	ExternalRefundID        *string             `gorm:"type:varchar(255)" json:"external_refund_id,omitempty"`
	CreatedAt               time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt               time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt             *time.Time          `json:"completed_at,omitempty"`

	// Relationships
	Consultation *Consultation `gorm:"foreignKey:ConsultationID" json:"consultation,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsCompleted checks if payment has settled
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// AmountInMinorUnits converts the amount to cents for the payment processor
func (p *Payment) AmountInMinorUnits() int64 {
	return p.Amount.Shift(2).Round(0).IntPart()
}
