package repository

import (
	"errors"
	"time"

	"telemed-clinic-backend/internal/domain/entity"
	domainRepo "telemed-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *entity.User) error {
	return db.Create(user).Error
}

func (r *userRepository) Update(db *gorm.DB, user *entity.User) error {
	return db.Save(user).Error
}

func (r *userRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.findOne(db.Where("id = ?", id))
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	return r.findOne(db.Where("email = ?", email))
}

func (r *userRepository) FindByLicenseNumber(db *gorm.DB, licenseNumber string) (*entity.User, error) {
	return r.findOne(db.Where("license_number = ?", licenseNumber))
}

// FindMedicalProfessionals returns users eligible to be assigned as doctors, ordered by name.
func (r *userRepository) FindMedicalProfessionals(db *gorm.DB, activeOnly bool) ([]entity.User, error) {
	var users []entity.User
	query := db.Where("is_medical_professional = ?", true)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *userRepository) findOne(query *gorm.DB) (*entity.User, error) {
	var user entity.User
	err := query.First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
