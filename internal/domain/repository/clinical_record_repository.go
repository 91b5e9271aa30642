package repository

import (
	"telemed-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClinicalRecordRepository interface {
	Create(db *gorm.DB, record *entity.ClinicalRecord) error
	Update(db *gorm.DB, record *entity.ClinicalRecord) error
	Delete(db *gorm.DB, id uuid.UUID) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicalRecord, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.ClinicalRecord, error)
	StatsByPatient(db *gorm.DB) ([]entity.PatientRecordStats, error)
}

type ClinicalTemplateRepository interface {
	Create(db *gorm.DB, template *entity.ClinicalTemplate) error
	Update(db *gorm.DB, template *entity.ClinicalTemplate) error
	Delete(db *gorm.DB, id uuid.UUID) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicalTemplate, error)
	FindAll(db *gorm.DB) ([]entity.ClinicalTemplate, error)
}
