package entity

// Role is the staff role stored on a User.
type Role string

const (
	RoleSpecialist     Role = "specialist"
	RoleMedicalAdmin   Role = "medical_admin"
	RoleAdministration Role = "administration"
	RoleReception      Role = "reception"
	RoleITAdmin        Role = "it_admin"
)

// Capability names an action guarded by role checks.
type Capability string

const (
	// CapManageConsultations allows booking consultations on behalf of patients.
	CapManageConsultations Capability = "consultations.manage"
	// CapAdministerClinic allows listing/editing every consultation and patient.
	CapAdministerClinic Capability = "clinic.administer"
	// CapOverrideStatus allows forcing a consultation status outside the transition graph.
	CapOverrideStatus Capability = "consultations.override_status"
	// CapAccessClinicalRecords allows reading and writing clinical records and templates.
	CapAccessClinicalRecords Capability = "clinical_records.access"
	// CapManageStaff allows registering and editing medical professionals.
	CapManageStaff Capability = "staff.manage"
	// CapViewAuditLogs allows reading the audit trail.
	CapViewAuditLogs Capability = "audit_logs.view"
)

var roleCapabilities = map[Role][]Capability{
	RoleSpecialist: {
		CapManageConsultations,
		CapAccessClinicalRecords,
	},
	RoleMedicalAdmin: {
		CapManageConsultations,
		CapAdministerClinic,
		CapOverrideStatus,
		CapAccessClinicalRecords,
		CapViewAuditLogs,
	},
	RoleAdministration: {
		CapManageConsultations,
		CapAdministerClinic,
	},
	RoleReception: {
		CapManageConsultations,
		CapAdministerClinic,
	},
	RoleITAdmin: {
		CapManageConsultations,
		CapAdministerClinic,
		CapOverrideStatus,
		CapAccessClinicalRecords,
		CapManageStaff,
		CapViewAuditLogs,
	},
}

// IsValid reports whether r is one of the known staff roles.
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role Role, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}
