package repository

import (
	"errors"

	"telemed-clinic-backend/internal/domain/entity"
	domainRepo "telemed-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clinicalRecordRepository struct{}

func NewClinicalRecordRepository() domainRepo.ClinicalRecordRepository {
	return &clinicalRecordRepository{}
}

func (r *clinicalRecordRepository) Create(db *gorm.DB, record *entity.ClinicalRecord) error {
	return db.Omit(clause.Associations).Create(record).Error
}

func (r *clinicalRecordRepository) Update(db *gorm.DB, record *entity.ClinicalRecord) error {
	return db.Omit(clause.Associations).Save(record).Error
}

func (r *clinicalRecordRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&entity.ClinicalRecord{}).Error
}

func (r *clinicalRecordRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicalRecord, error) {
	var record entity.ClinicalRecord
	err := db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *clinicalRecordRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.ClinicalRecord, error) {
	var records []entity.ClinicalRecord
	err := db.Where("patient_id = ?", patientID).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// StatsByPatient aggregates record count and latest record date per patient.
func (r *clinicalRecordRepository) StatsByPatient(db *gorm.DB) ([]entity.PatientRecordStats, error) {
	var stats []entity.PatientRecordStats
	err := db.Model(&entity.ClinicalRecord{}).
		Select("patient_id, COUNT(*) AS records_count, MAX(created_at) AS latest_record_at").
		Group("patient_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type clinicalTemplateRepository struct{}

func NewClinicalTemplateRepository() domainRepo.ClinicalTemplateRepository {
	return &clinicalTemplateRepository{}
}

func (r *clinicalTemplateRepository) Create(db *gorm.DB, template *entity.ClinicalTemplate) error {
	return db.Create(template).Error
}

func (r *clinicalTemplateRepository) Update(db *gorm.DB, template *entity.ClinicalTemplate) error {
	return db.Save(template).Error
}

func (r *clinicalTemplateRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&entity.ClinicalTemplate{}).Error
}

func (r *clinicalTemplateRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicalTemplate, error) {
	var template entity.ClinicalTemplate
	err := db.Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *clinicalTemplateRepository) FindAll(db *gorm.DB) ([]entity.ClinicalTemplate, error) {
	var templates []entity.ClinicalTemplate
	if err := db.Order("name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
