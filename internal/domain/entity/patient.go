package entity

import (
	"time"

	"github.com/google/uuid"
)

// Patient is created on first booking with a given email and never deleted.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName  string    `gorm:"type:varchar(255);not null;index" json:"full_name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// PatientRecordStats summarizes the clinical records of one patient.
type PatientRecordStats struct {
	PatientID      uuid.UUID
	RecordsCount   int64
	LatestRecordAt *time.Time
}
