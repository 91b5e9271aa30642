package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalNote holds the free-text fields shared by records and templates
type ClinicalNote struct {
	ChiefComplaint string `gorm:"type:text" json:"chief_complaint,omitempty"`
	Background     string `gorm:"type:text" json:"background,omitempty"`
	Assessment     string `gorm:"type:text" json:"assessment,omitempty"`
	Plan           string `gorm:"type:text" json:"plan,omitempty"`
	Allergies      string `gorm:"type:text" json:"allergies,omitempty"`
	Medications    string `gorm:"type:text" json:"medications,omitempty"`
}

// FillBlanks copies every field of src into n where n's field is empty.
func (n *ClinicalNote) FillBlanks(src ClinicalNote) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&n.ChiefComplaint, src.ChiefComplaint)
	fill(&n.Background, src.Background)
	fill(&n.Assessment, src.Assessment)
	fill(&n.Plan, src.Plan)
	fill(&n.Allergies, src.Allergies)
	fill(&n.Medications, src.Medications)
}

// ClinicalRecord is a clinical note attached to a patient
type ClinicalRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	AuthorID  *uuid.UUID `gorm:"type:uuid;index" json:"author_id,omitempty"`
	ClinicalNote
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (ClinicalRecord) TableName() string {
	return "clinical_records"
}
