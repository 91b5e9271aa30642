package repository

import (
	"errors"

	"telemed-clinic-backend/internal/domain/entity"
	domainRepo "telemed-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

// FindOrCreateByEmail relies on the unique email index: a concurrent insert for the same
// email turns into a no-op and both callers re-read the same row.
func (r *patientRepository) FindOrCreateByEmail(db *gorm.DB, patient *entity.Patient) (*entity.Patient, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(patient).Error
	if err != nil {
		return nil, err
	}

	stored, err := r.FindByEmail(db, patient.Email)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return stored, nil
}

func (r *patientRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByEmail(db *gorm.DB, email string) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.Where("email = ?", email).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// Search returns patients whose email or name contains the query, newest first.
func (r *patientRepository) Search(db *gorm.DB, filter entity.PatientFilter) ([]entity.Patient, error) {
	var patients []entity.Patient
	query := db.Model(&entity.Patient{})
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("email ILIKE ? OR full_name ILIKE ?", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Order("created_at DESC").Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) FindAll(db *gorm.DB) ([]entity.Patient, error) {
	var patients []entity.Patient
	if err := db.Order("full_name ASC").Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}
