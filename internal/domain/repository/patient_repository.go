package repository

import (
	"telemed-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	// FindOrCreateByEmail inserts the patient unless one with the same email exists,
	// and returns the stored row either way.
	FindOrCreateByEmail(db *gorm.DB, patient *entity.Patient) (*entity.Patient, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Patient, error)
	Search(db *gorm.DB, filter entity.PatientFilter) ([]entity.Patient, error)
	FindAll(db *gorm.DB) ([]entity.Patient, error)
}
