package repository

import (
	"time"

	"telemed-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	// FindOrCreateForConsultation inserts the payment unless one already exists for its
	// consultation, and returns the stored row either way.
	FindOrCreateForConsultation(db *gorm.DB, payment *entity.Payment) (*entity.Payment, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error)
	FindByPaymentIntentID(db *gorm.DB, intentID string) (*entity.Payment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, skip, limit int) ([]entity.Payment, error)
	SetSessionID(db *gorm.DB, id uuid.UUID, sessionID string) error
	// MarkCompleted moves a payment to completed unless it already is.
	// Returns affected rows: 0 means the payment was already completed.
	MarkCompleted(db *gorm.DB, id uuid.UUID, intentID, customerID *string, at time.Time) (int64, error)
	// MarkFailed moves a pending or processing payment to failed.
	MarkFailed(db *gorm.DB, id uuid.UUID, intentID *string) (int64, error)
}
