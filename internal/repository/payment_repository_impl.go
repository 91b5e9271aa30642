package repository

import (
	"errors"
	"time"

	"telemed-clinic-backend/internal/domain/entity"
	domainRepo "telemed-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepository struct{}

func NewPaymentRepository() domainRepo.PaymentRepository {
	return &paymentRepository{}
}

// FindOrCreateForConsultation relies on the unique consultation_id index so that two
// concurrent checkouts converge on a single payment row.
func (r *paymentRepository) FindOrCreateForConsultation(db *gorm.DB, payment *entity.Payment) (*entity.Payment, error) {
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "consultation_id"}},
		DoNothing: true,
	}).Create(payment).Error
	if err != nil {
		return nil, err
	}

	var stored entity.Payment
	if err := db.Where("consultation_id = ?", payment.ConsultationID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *paymentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByPaymentIntentID(db *gorm.DB, intentID string) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.Where("external_payment_intent_id = ?", intentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByDoctorID lists payments of the doctor's consultations, newest first.
func (r *paymentRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, skip, limit int) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := db.
		Joins("JOIN consultations ON consultations.id = payments.consultation_id").
		Where("consultations.doctor_id = ?", doctorID).
		Preload("Consultation.Patient").
		Order("payments.created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) SetSessionID(db *gorm.DB, id uuid.UUID, sessionID string) error {
	return db.Model(&entity.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"external_session_id": sessionID,
			"updated_at":          time.Now().UTC(),
		}).Error
}

// MarkCompleted atomically completes a payment ONLY if it is not already completed or refunded.
// Returns affected rows: 1 = success, 0 = replayed settlement (completed_at is never overwritten).
func (r *paymentRepository) MarkCompleted(db *gorm.DB, id uuid.UUID, intentID, customerID *string, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":       entity.PaymentStatusCompleted,
		"completed_at": at,
		"updated_at":   at,
	}
	if intentID != nil {
		updates["external_payment_intent_id"] = *intentID
	}
	if customerID != nil {
		updates["external_customer_id"] = *customerID
	}

	result := db.Model(&entity.Payment{}).
		Where("id = ? AND status NOT IN ?", id, []entity.PaymentStatus{entity.PaymentStatusCompleted, entity.PaymentStatusRefunded}).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// MarkFailed atomically fails a payment that has not settled yet.
func (r *paymentRepository) MarkFailed(db *gorm.DB, id uuid.UUID, intentID *string) (int64, error) {
	updates := map[string]interface{}{
		"status":     entity.PaymentStatusFailed,
		"updated_at": time.Now().UTC(),
	}
	if intentID != nil {
		updates["external_payment_intent_id"] = *intentID
	}

	result := db.Model(&entity.Payment{}).
		Where("id = ? AND status IN ?", id, []entity.PaymentStatus{entity.PaymentStatusPending, entity.PaymentStatusProcessing}).
		Updates(updates)
	return result.RowsAffected, result.Error
}
