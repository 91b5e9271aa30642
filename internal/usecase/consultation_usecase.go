package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"telemed-clinic-backend/internal/converter"
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"
	"telemed-clinic-backend/internal/infrastructure/database"
	"telemed-clinic-backend/internal/infrastructure/metrics"
	"telemed-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrInvalidReference     = errors.New("doctor must reference a medical professional")
	ErrMissingPatient       = errors.New("patient not provided")
	ErrMissingDoctor        = errors.New("doctor not provided")
	ErrInvalidStatus        = errors.New("invalid consultation status")
	ErrInvalidTimestamp     = errors.New("invalid scheduled_at, use an ISO 8601 date-time")
	ErrInvalidTransition    = entity.ErrInvalidTransition
	ErrInvalidState         = errors.New("consultation is not in a valid state for this operation")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("not authorized")
	ErrNotAuthorized        = errors.New("only the assigned doctor can perform this action")
)

const (
	defaultAdminConsultationLimit = 500
	maxAdminConsultationLimit     = 1000
	defaultMyConsultationLimit    = 200
	maxMyConsultationLimit        = 500
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTimestamp accepts ISO 8601 date-times. Values without an offset are read as UTC.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

type ConsultationUsecase interface {
	BookPublic(ctx context.Context, req *dto.PublicBookingRequest) (*dto.ConsultationResponse, error)
	CreateByStaff(ctx context.Context, actor *entity.User, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	UpdateConsultation(ctx context.Context, actor *entity.User, id uuid.UUID, req *dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error)
	StartVideo(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.VideoInfoResponse, error)
	EndVideo(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.ConsultationResponse, error)
	GetVideoInfo(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.VideoInfoResponse, error)
	GetConsultation(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.ConsultationResponse, error)
	ListMyConsultations(ctx context.Context, actor *entity.User, limit int) (*dto.ConsultationListResponse, error)
	ListConsultations(ctx context.Context, actor *entity.User, req *dto.ConsultationFilterRequest) (*dto.ConsultationListResponse, error)
}

type consultationUsecase struct {
	tx               database.Transactor
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	patientRepo      repository.PatientRepository
	userRepo         repository.UserRepository
	rooms            service.RoomProvisioner
	notifier         service.NotificationService
	auditService     service.AuditService
	metrics          *metrics.ClinicMetrics
	now              func() time.Time
}

func NewConsultationUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	rooms service.RoomProvisioner,
	notifier service.NotificationService,
	auditService service.AuditService,
	clinicMetrics *metrics.ClinicMetrics,
) ConsultationUsecase {
	return &consultationUsecase{
		tx:               tx,
		log:              log,
		consultationRepo: consultationRepo,
		patientRepo:      patientRepo,
		userRepo:         userRepo,
		rooms:            rooms,
		notifier:         notifier,
		auditService:     auditService,
		metrics:          clinicMetrics,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// bookingInput is the resolved form of both booking requests.
type bookingInput struct {
	patientID        *uuid.UUID
	patient          *dto.PatientRequest
	doctorID         uuid.UUID
	consultationType entity.ConsultationType
	specialty        string
	reasonForVisit   string
	scheduledAt      time.Time
	durationMinutes  int
}

func (u *consultationUsecase) BookPublic(ctx context.Context, req *dto.PublicBookingRequest) (*dto.ConsultationResponse, error) {
	scheduledAt, err := parseTimestamp(req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	consultationType := entity.ConsultationType(req.ConsultationType)
	if consultationType == "" {
		consultationType = entity.ConsultationTypeVideo
	}

	patient := req.Patient
	consultation, err := u.book(ctx, nil, bookingInput{
		patient:          &patient,
		doctorID:         req.DoctorID,
		consultationType: consultationType,
		specialty:        req.Specialty,
		reasonForVisit:   req.ReasonForVisit,
		scheduledAt:      scheduledAt,
		durationMinutes:  req.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}

	u.metrics.ObserveBooking("public", string(consultation.ConsultationType))
	service.NotifyConsultationParties(u.notifier, consultation)

	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) CreateByStaff(ctx context.Context, actor *entity.User, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	if !actor.Can(entity.CapManageConsultations) {
		return nil, ErrUnauthorized
	}

	if req.PatientID == nil && req.Patient == nil {
		return nil, ErrMissingPatient
	}

	var doctorID uuid.UUID
	switch {
	case actor.Role == entity.RoleSpecialist && !actor.IsSuperuser:
		// Specialists can only book under themselves.
		doctorID = actor.ID
	case req.DoctorID != nil:
		doctorID = *req.DoctorID
	default:
		return nil, ErrMissingDoctor
	}

	scheduledAt, err := parseTimestamp(req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	consultationType := entity.ConsultationType(req.ConsultationType)
	if consultationType == "" {
		consultationType = entity.ConsultationTypeVideo
	}

	consultation, err := u.book(ctx, actor, bookingInput{
		patientID:        req.PatientID,
		patient:          req.Patient,
		doctorID:         doctorID,
		consultationType: consultationType,
		specialty:        req.Specialty,
		reasonForVisit:   req.ReasonForVisit,
		scheduledAt:      scheduledAt,
		durationMinutes:  req.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}

	u.metrics.ObserveBooking("staff", string(consultation.ConsultationType))
	service.NotifyConsultationParties(u.notifier, consultation)

	return converter.ConsultationToResponse(consultation), nil
}

// book creates a confirmed consultation in one transaction, upserting the patient by
// email and provisioning a room for video consultations.
func (u *consultationUsecase) book(ctx context.Context, actor *entity.User, in bookingInput) (*entity.Consultation, error) {
	if !in.consultationType.IsValid() {
		return nil, ErrInvalidInput
	}
	if in.durationMinutes <= 0 {
		in.durationMinutes = entity.DefaultConsultationDuration
	}

	var consultation *entity.Consultation
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		doctor, err := u.findEligibleDoctor(tx, in.doctorID)
		if err != nil {
			return err
		}

		patient, err := u.resolvePatient(tx, in.patientID, in.patient)
		if err != nil {
			return err
		}

		consultation = &entity.Consultation{
			ID:               uuid.New(),
			PatientID:        patient.ID,
			DoctorID:         doctor.ID,
			ConsultationType: in.consultationType,
			Specialty:        in.specialty,
			ReasonForVisit:   in.reasonForVisit,
			ScheduledAt:      in.scheduledAt,
			DurationMinutes:  in.durationMinutes,
			Status:           entity.ConsultationStatusConfirmed,
		}
		if consultation.Specialty == "" {
			consultation.Specialty = doctor.Specialty
		}

		if consultation.ConsultationType == entity.ConsultationTypeVideo {
			room, err := u.rooms.Provision(consultation.ID)
			if err != nil {
				u.log.Warnf("Failed to provision video room: %+v", err)
				return err
			}
			consultation.AssignRoom(room.Name, room.URL)
		}

		if err := u.consultationRepo.Create(tx, consultation); err != nil {
			u.log.Warnf("Failed to create consultation: %+v", err)
			return err
		}

		if actor != nil {
			if err := u.auditService.LogCreate(ctx, tx, &actor.ID, entity.AuditActionConsultationCreate,
				"consultation", consultation.ID.String(), consultationSnapshot(consultation)); err != nil {
				return err
			}
		}

		consultation.Patient = patient
		consultation.Doctor = doctor
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Consultation %s booked for patient %s with doctor %s", consultation.ID, consultation.PatientID, consultation.DoctorID)
	return consultation, nil
}

func (u *consultationUsecase) findEligibleDoctor(tx *gorm.DB, doctorID uuid.UUID) (*entity.User, error) {
	doctor, err := u.userRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by ID: %+v", err)
		return nil, err
	}
	if doctor == nil || !doctor.CanBeAssignedAsDoctor() {
		return nil, ErrInvalidReference
	}
	return doctor, nil
}

func (u *consultationUsecase) resolvePatient(tx *gorm.DB, patientID *uuid.UUID, inline *dto.PatientRequest) (*entity.Patient, error) {
	if patientID != nil {
		patient, err := u.patientRepo.FindByID(tx, *patientID)
		if err != nil {
			u.log.Warnf("Failed to find patient by ID: %+v", err)
			return nil, err
		}
		if patient != nil {
			return patient, nil
		}
	}

	if inline == nil {
		return nil, ErrMissingPatient
	}

	patient, err := u.patientRepo.FindOrCreateByEmail(tx, &entity.Patient{
		FullName: strings.TrimSpace(inline.FullName),
		Email:    strings.TrimSpace(inline.Email),
		Phone:    strings.TrimSpace(inline.Phone),
	})
	if err != nil {
		u.log.Warnf("Failed to find or create patient: %+v", err)
		return nil, err
	}
	return patient, nil
}

func (u *consultationUsecase) UpdateConsultation(ctx context.Context, actor *entity.User, id uuid.UUID, req *dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error) {
	if req.Override && !actor.Can(entity.CapOverrideStatus) {
		return nil, ErrUnauthorized
	}

	var consultation *entity.Consultation
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		consultation, err = u.consultationRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find consultation by ID: %+v", err)
			return err
		}
		if consultation == nil {
			return ErrConsultationNotFound
		}
		if !actor.Can(entity.CapAdministerClinic) && !consultation.IsDoctor(actor.ID) {
			return ErrUnauthorized
		}

		before := consultationSnapshot(consultation)
		fromStatus := consultation.Status

		if req.DoctorID != nil {
			doctor, err := u.findEligibleDoctor(tx, *req.DoctorID)
			if err != nil {
				return err
			}
			consultation.DoctorID = doctor.ID
			consultation.Doctor = doctor
		}

		if req.ScheduledAt != nil {
			scheduledAt, err := parseTimestamp(*req.ScheduledAt)
			if err != nil {
				return err
			}
			consultation.ScheduledAt = scheduledAt
		}

		if req.DurationMinutes != nil {
			consultation.DurationMinutes = *req.DurationMinutes
		}

		if req.Notes != nil {
			consultation.Notes = *req.Notes
		}

		if req.Status != nil {
			status, ok := entity.ParseConsultationStatus(*req.Status)
			if !ok {
				return ErrInvalidStatus
			}
			if req.Override {
				consultation.ForceStatus(status, u.now())
			} else if err := consultation.TransitionTo(status, u.now()); err != nil {
				return err
			}
		}

		if consultation.Status != fromStatus {
			rows, err := u.consultationRepo.UpdateStatus(tx, consultation, fromStatus)
			if err != nil {
				u.log.Warnf("Failed to update consultation status: %+v", err)
				return err
			}
			if rows == 0 {
				return ErrInvalidState
			}
		}

		if err := u.consultationRepo.UpdateDetails(tx, consultation); err != nil {
			u.log.Warnf("Failed to update consultation: %+v", err)
			return err
		}

		action := entity.AuditActionConsultationUpdate
		if req.Override && req.Status != nil {
			action = entity.AuditActionConsultationOverride
		}
		return u.auditService.LogUpdate(ctx, tx, &actor.ID, action, "consultation", consultation.ID.String(),
			before, consultationSnapshot(consultation))
	})
	if err != nil {
		return nil, err
	}

	if req.Override && req.Status != nil {
		u.log.Warnf("Consultation %s status overridden to %s by %s", consultation.ID, consultation.Status, actor.ID)
	}

	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) StartVideo(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.VideoInfoResponse, error) {
	var consultation *entity.Consultation
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		consultation, err = u.findForDoctor(tx, actor, id)
		if err != nil {
			return err
		}
		if !consultation.IsConfirmed() {
			return ErrInvalidState
		}

		// Keep the room already sent to the patient on booking.
		if !consultation.HasRoom() {
			room, err := u.rooms.Provision(consultation.ID)
			if err != nil {
				u.log.Warnf("Failed to provision video room: %+v", err)
				return err
			}
			consultation.AssignRoom(room.Name, room.URL)
		}

		return u.transition(tx, consultation, entity.ConsultationStatusInProgress)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Video consultation %s started", consultation.ID)
	return videoInfo(consultation, actor), nil
}

func (u *consultationUsecase) EndVideo(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.ConsultationResponse, error) {
	var consultation *entity.Consultation
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		consultation, err = u.findForDoctor(tx, actor, id)
		if err != nil {
			return err
		}
		if !consultation.IsInProgress() {
			return ErrInvalidState
		}
		return u.transition(tx, consultation, entity.ConsultationStatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Video consultation %s ended", consultation.ID)
	return converter.ConsultationToResponse(consultation), nil
}

// transition applies a lifecycle edge and persists it with a compare-and-set on the old status.
func (u *consultationUsecase) transition(tx *gorm.DB, consultation *entity.Consultation, to entity.ConsultationStatus) error {
	from := consultation.Status
	if err := consultation.TransitionTo(to, u.now()); err != nil {
		return ErrInvalidState
	}

	rows, err := u.consultationRepo.UpdateStatus(tx, consultation, from)
	if err != nil {
		u.log.Warnf("Failed to update consultation status: %+v", err)
		return err
	}
	if rows == 0 {
		return ErrInvalidState
	}
	return nil
}

func (u *consultationUsecase) findForDoctor(tx *gorm.DB, actor *entity.User, id uuid.UUID) (*entity.Consultation, error) {
	consultation, err := u.consultationRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find consultation by ID: %+v", err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	if !consultation.IsDoctor(actor.ID) {
		return nil, ErrNotAuthorized
	}
	return consultation, nil
}

func (u *consultationUsecase) GetVideoInfo(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.VideoInfoResponse, error) {
	consultation, err := u.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !consultation.HasRoom() {
		return nil, ErrInvalidState
	}
	return videoInfo(consultation, actor), nil
}

func (u *consultationUsecase) GetConsultation(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := u.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return converter.ConsultationToResponse(consultation), nil
}

// findVisible loads a consultation the actor may read: its doctor or clinic administrators.
func (u *consultationUsecase) findVisible(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Consultation, error) {
	consultation, err := u.consultationRepo.FindByID(u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find consultation by ID: %+v", err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	if !consultation.IsDoctor(actor.ID) && !actor.Can(entity.CapAdministerClinic) {
		return nil, ErrNotAuthorized
	}
	return consultation, nil
}

func (u *consultationUsecase) ListMyConsultations(ctx context.Context, actor *entity.User, limit int) (*dto.ConsultationListResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	filter := entity.ConsultationFilter{
		DoctorID: &actor.ID,
		Limit:    clampLimit(limit, defaultMyConsultationLimit, maxMyConsultationLimit),
	}
	consultations, err := u.consultationRepo.FindAll(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find consultations for doctor: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

func (u *consultationUsecase) ListConsultations(ctx context.Context, actor *entity.User, req *dto.ConsultationFilterRequest) (*dto.ConsultationListResponse, error) {
	if !actor.Can(entity.CapAdministerClinic) {
		return nil, ErrUnauthorized
	}

	filter, err := buildConsultationFilter(req)
	if err != nil {
		return nil, err
	}

	consultations, err := u.consultationRepo.FindAll(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find consultations: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

func buildConsultationFilter(req *dto.ConsultationFilterRequest) (entity.ConsultationFilter, error) {
	filter := entity.ConsultationFilter{Limit: clampLimit(req.Limit, defaultAdminConsultationLimit, maxAdminConsultationLimit)}

	if req.Day != "" {
		day, err := time.Parse("2006-01-02", req.Day)
		if err != nil {
			return filter, ErrInvalidInput
		}
		from := day.UTC()
		to := from.AddDate(0, 0, 1)
		filter.From = &from
		filter.To = &to
	}

	if req.DoctorID != "" {
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return filter, ErrInvalidInput
		}
		filter.DoctorID = &doctorID
	}

	if req.PatientID != "" {
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			return filter, ErrInvalidInput
		}
		filter.PatientID = &patientID
	}

	if req.Status != "" {
		status, ok := entity.ParseConsultationStatus(req.Status)
		if !ok {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// clampLimit applies the default to non-positive limits and caps the rest.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func videoInfo(c *entity.Consultation, actor *entity.User) *dto.VideoInfoResponse {
	info := &dto.VideoInfoResponse{
		ConsultationID: c.ID,
		Status:         string(c.Status),
		IsDoctor:       c.IsDoctor(actor.ID),
	}
	if c.RoomName != nil {
		info.RoomName = *c.RoomName
	}
	if c.RoomURL != nil {
		info.RoomURL = *c.RoomURL
	}
	return info
}

// consultationSnapshot is the audit representation of the editable fields.
func consultationSnapshot(c *entity.Consultation) map[string]interface{} {
	return map[string]interface{}{
		"doctor_id":        c.DoctorID.String(),
		"patient_id":       c.PatientID.String(),
		"scheduled_at":     c.ScheduledAt.UTC().Format(time.RFC3339),
		"duration_minutes": c.DurationMinutes,
		"status":           string(c.Status),
		"notes":            c.Notes,
	}
}
