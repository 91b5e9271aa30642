package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a staff account (doctors, administrators, reception, IT)
type User struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email                 string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password              string     `gorm:"type:text;not null" json:"-"`
	FullName              string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Role                  Role       `gorm:"type:varchar(50);not null;default:'specialist';index" json:"role"`
	Specialty             string     `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	LicenseNumber         *string    `gorm:"type:varchar(50);uniqueIndex" json:"license_number,omitempty"`
	IsActive              *bool      `gorm:"not null;default:true;index" json:"is_active"`
	IsSuperuser           bool       `gorm:"not null" json:"is_superuser"`
	IsMedicalProfessional bool       `gorm:"not null;index" json:"is_medical_professional"`
	IsFirstLogin          bool       `gorm:"not null" json:"is_first_login"`
	LastLogin             *time.Time `json:"last_login,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Active treats a missing flag as active, matching the column default.
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// CanBeAssignedAsDoctor reports whether the user may be a consultation's doctor.
func (u *User) CanBeAssignedAsDoctor() bool {
	return u.IsMedicalProfessional
}

// Can reports whether the user holds the capability. Superusers hold every capability;
// medical professionals always keep access to clinical records.
func (u *User) Can(capability Capability) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	if capability == CapAccessClinicalRecords && u.IsMedicalProfessional {
		return true
	}
	return HasCapability(u.Role, capability)
}

// DashboardPath returns the landing page hint sent back on login.
func (u *User) DashboardPath() string {
	switch {
	case u.IsSuperuser, u.Role == RoleITAdmin:
		return "/it/medical-professionals"
	case u.Role == RoleMedicalAdmin:
		return "/admin"
	case u.Role == RoleSpecialist, u.IsMedicalProfessional:
		return "/doctor"
	case u.Role == RoleAdministration, u.Role == RoleReception:
		return "/admin"
	default:
		return "/"
	}
}
