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

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Omit(clause.Associations).Create(consultation).Error
}

// UpdateDetails writes the administratively editable columns only. Status, timestamps
// and room fields belong to UpdateStatus.
func (r *consultationRepository) UpdateDetails(db *gorm.DB, consultation *entity.Consultation) error {
	now := time.Now().UTC()
	err := db.Model(&entity.Consultation{}).
		Where("id = ?", consultation.ID).
		Updates(map[string]interface{}{
			"doctor_id":        consultation.DoctorID,
			"scheduled_at":     consultation.ScheduledAt,
			"duration_minutes": consultation.DurationMinutes,
			"notes":            consultation.Notes,
			"updated_at":       now,
		}).Error
	if err == nil {
		consultation.UpdatedAt = now
	}
	return err
}

// UpdateStatus atomically moves the consultation out of status `from`.
// Returns affected rows: 1 = success, 0 = status changed concurrently (prevents double transitions).
func (r *consultationRepository) UpdateStatus(db *gorm.DB, consultation *entity.Consultation, from entity.ConsultationStatus) (int64, error) {
	now := time.Now().UTC()
	result := db.Model(&entity.Consultation{}).
		Where("id = ? AND status = ?", consultation.ID, from).
		Updates(map[string]interface{}{
			"status":     consultation.Status,
			"started_at": consultation.StartedAt,
			"ended_at":   consultation.EndedAt,
			"room_name":  consultation.RoomName,
			"room_url":   consultation.RoomURL,
			"updated_at": now,
		})
	if result.Error == nil && result.RowsAffected > 0 {
		consultation.UpdatedAt = now
	}
	return result.RowsAffected, result.Error
}

func (r *consultationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.Preload("Patient").Preload("Doctor").Where("id = ?", id).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends, then loads it
// with its parties.
func (r *consultationRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var locked entity.Consultation
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", id).First(&locked).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.FindByID(db, id)
}

// FindAll returns consultations matching the filter ordered by scheduled_at.
func (r *consultationRepository) FindAll(db *gorm.DB, filter entity.ConsultationFilter) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	query := db.Preload("Patient").Preload("Doctor")

	if filter.From != nil {
		query = query.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_at < ?", *filter.To)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Order("scheduled_at ASC").Find(&consultations).Error; err != nil {
		return nil, err
	}
	return consultations, nil
}
