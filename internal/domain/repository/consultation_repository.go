package repository

import (
	"telemed-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(db *gorm.DB, consultation *entity.Consultation) error
	// UpdateDetails writes doctor, schedule, duration and notes without touching status.
	UpdateDetails(db *gorm.DB, consultation *entity.Consultation) error
	// UpdateStatus persists the consultation's status and timestamps only if the stored
	// status still equals from. Returns affected rows: 0 means another writer got there first.
	UpdateStatus(db *gorm.DB, consultation *entity.Consultation, from entity.ConsultationStatus) (int64, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	// FindByIDForUpdate is FindByID holding a row lock for the rest of the transaction.
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	FindAll(db *gorm.DB, filter entity.ConsultationFilter) ([]entity.Consultation, error)
}
