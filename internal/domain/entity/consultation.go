package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ConsultationStatus represents the lifecycle state of a consultation
type ConsultationStatus string

const (
	ConsultationStatusPending    ConsultationStatus = "pending"
	ConsultationStatusConfirmed  ConsultationStatus = "confirmed"
	ConsultationStatusInProgress ConsultationStatus = "in_progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
	ConsultationStatusCancelled  ConsultationStatus = "cancelled"
	ConsultationStatusNoShow     ConsultationStatus = "no_show"
)

// ConsultationType represents how the consultation takes place
type ConsultationType string

const (
	ConsultationTypeVideo    ConsultationType = "video"
	ConsultationTypePhone    ConsultationType = "phone"
	ConsultationTypeInPerson ConsultationType = "in_person"
)

const DefaultConsultationDuration = 30

var ErrInvalidTransition = errors.New("invalid consultation status transition")

var consultationTransitions = map[ConsultationStatus][]ConsultationStatus{
	ConsultationStatusPending:    {ConsultationStatusConfirmed, ConsultationStatusCancelled},
	ConsultationStatusConfirmed:  {ConsultationStatusInProgress, ConsultationStatusCancelled, ConsultationStatusNoShow},
	ConsultationStatusInProgress: {ConsultationStatusCompleted},
	ConsultationStatusCompleted:  nil,
	ConsultationStatusCancelled:  nil,
	ConsultationStatusNoShow:     nil,
}

// ParseConsultationStatus returns the status named by s, or false if s is not a known status.
func ParseConsultationStatus(s string) (ConsultationStatus, bool) {
	status := ConsultationStatus(s)
	_, ok := consultationTransitions[status]
	return status, ok
}

// IsValid reports whether the consultation type is known
func (t ConsultationType) IsValid() bool {
	switch t {
	case ConsultationTypeVideo, ConsultationTypePhone, ConsultationTypeInPerson:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves the status
func (s ConsultationStatus) IsTerminal() bool {
	return len(consultationTransitions[s]) == 0
}

// CanTransitionTo reports whether from -> to is an edge of the lifecycle graph.
// Staying in the same status is always allowed.
func (s ConsultationStatus) CanTransitionTo(to ConsultationStatus) bool {
	if s == to {
		return true
	}
	for _, next := range consultationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Consultation represents a scheduled clinical encounter between a patient and a doctor
type Consultation struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ConsultationType ConsultationType   `gorm:"type:varchar(20);not null;default:'video'" json:"consultation_type"`
	Specialty        string             `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	ReasonForVisit   string             `gorm:"type:text" json:"reason_for_visit,omitempty"`
	Notes            string             `gorm:"type:text" json:"notes,omitempty"`
	ScheduledAt      time.Time          `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes  int                `gorm:"not null;default:30" json:"duration_minutes"`
	Status           ConsultationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RoomName         *string            `gorm:"type:varchar(255);uniqueIndex" json:"room_name,omitempty"`
	RoomURL          *string            `gorm:"type:text" json:"room_url,omitempty"`
	StartedAt        *time.Time         `json:"started_at,omitempty"`
	EndedAt          *time.Time         `json:"ended_at,omitempty"`
	CreatedAt        time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

// IsConfirmed checks if consultation is confirmed
func (c *Consultation) IsConfirmed() bool {
	return c.Status == ConsultationStatusConfirmed
}

// IsInProgress checks if the video session has started
func (c *Consultation) IsInProgress() bool {
	return c.Status == ConsultationStatusInProgress
}

// HasRoom reports whether a video room has been provisioned
func (c *Consultation) HasRoom() bool {
	return c.RoomName != nil && c.RoomURL != nil
}

// IsDoctor reports whether userID is the assigned doctor
func (c *Consultation) IsDoctor(userID uuid.UUID) bool {
	return c.DoctorID == userID
}

// AssignRoom records the provisioned video room
func (c *Consultation) AssignRoom(name, url string) {
	c.RoomName = &name
	c.RoomURL = &url
}

// TransitionTo moves the consultation to status `to` if the lifecycle graph allows it,
// stamping started_at/ended_at on entry into in_progress/completed.
func (c *Consultation) TransitionTo(to ConsultationStatus, now time.Time) error {
	if !c.Status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	c.apply(to, now)
	return nil
}

// ForceStatus sets the status without consulting the lifecycle graph.
// Only the audited administrative override path may use it.
func (c *Consultation) ForceStatus(to ConsultationStatus, now time.Time) {
	c.apply(to, now)
}

func (c *Consultation) apply(to ConsultationStatus, now time.Time) {
	if c.Status == to {
		return
	}
	switch to {
	case ConsultationStatusInProgress:
		if c.StartedAt == nil {
			c.StartedAt = &now
		}
	case ConsultationStatusCompleted:
		if c.EndedAt == nil {
			c.EndedAt = &now
		}
	}
	c.Status = to
}
