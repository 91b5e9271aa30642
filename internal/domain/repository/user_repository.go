package repository

import (
	"time"

	"telemed-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	Update(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByLicenseNumber(db *gorm.DB, licenseNumber string) (*entity.User, error)
	FindMedicalProfessionals(db *gorm.DB, activeOnly bool) ([]entity.User, error)
	UpdateLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error
}
