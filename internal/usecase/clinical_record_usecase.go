package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"telemed-clinic-backend/internal/converter"
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"
	"telemed-clinic-backend/internal/infrastructure/database"
	"telemed-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRecordNotFound    = errors.New("clinical record not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrNoMatchingRecords = errors.New("no records found for this complaint")
)

const (
	pdfContentType         = "application/pdf"
	complaintFilenameWidth = 20
)

// DocumentRenderer turns clinical data into a printable document.
type DocumentRenderer interface {
	PatientHistory(patient *entity.Patient, records []entity.ClinicalRecord, subtitle string) ([]byte, error)
	Consultation(c *entity.Consultation) ([]byte, error)
}

type ClinicalRecordUsecase interface {
	GetHistory(ctx context.Context, actor *entity.User, patientID uuid.UUID) (*dto.PatientHistoryResponse, error)
	CreateRecord(ctx context.Context, actor *entity.User, patientID uuid.UUID, req *dto.CreateClinicalRecordRequest) (*dto.ClinicalRecordResponse, error)
	UpdateRecord(ctx context.Context, actor *entity.User, patientID, recordID uuid.UUID, req *dto.UpdateClinicalRecordRequest) (*dto.ClinicalRecordResponse, error)
	DeleteRecord(ctx context.Context, actor *entity.User, patientID, recordID uuid.UUID) error

	HistoryPDF(ctx context.Context, actor *entity.User, patientID uuid.UUID) (*dto.DocumentResponse, error)
	ComplaintPDF(ctx context.Context, actor *entity.User, patientID uuid.UUID, complaint string) (*dto.DocumentResponse, error)
	ConsultationPDF(ctx context.Context, actor *entity.User, consultationID uuid.UUID) (*dto.DocumentResponse, error)
}

type clinicalRecordUsecase struct {
	tx               database.Transactor
	log              *logrus.Logger
	recordRepo       repository.ClinicalRecordRepository
	templateRepo     repository.ClinicalTemplateRepository
	patientRepo      repository.PatientRepository
	consultationRepo repository.ConsultationRepository
	renderer         DocumentRenderer
	auditService     service.AuditService
	now              func() time.Time
}

func NewClinicalRecordUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	recordRepo repository.ClinicalRecordRepository,
	templateRepo repository.ClinicalTemplateRepository,
	patientRepo repository.PatientRepository,
	consultationRepo repository.ConsultationRepository,
	renderer DocumentRenderer,
	auditService service.AuditService,
) ClinicalRecordUsecase {
	return &clinicalRecordUsecase{
		tx:               tx,
		log:              log,
		recordRepo:       recordRepo,
		templateRepo:     templateRepo,
		patientRepo:      patientRepo,
		consultationRepo: consultationRepo,
		renderer:         renderer,
		auditService:     auditService,
		now:              time.Now,
	}
}

func (u *clinicalRecordUsecase) GetHistory(ctx context.Context, actor *entity.User, patientID uuid.UUID) (*dto.PatientHistoryResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	db := u.tx.DB(ctx)
	patient, records, err := u.loadHistory(db, patientID)
	if err != nil {
		return nil, err
	}

	return &dto.PatientHistoryResponse{
		Patient: *converter.PatientToResponse(patient),
		Records: converter.ClinicalRecordsToResponses(records),
	}, nil
}

func (u *clinicalRecordUsecase) CreateRecord(ctx context.Context, actor *entity.User, patientID uuid.UUID, req *dto.CreateClinicalRecordRequest) (*dto.ClinicalRecordResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	record := &entity.ClinicalRecord{
		PatientID:    patientID,
		AuthorID:     &actor.ID,
		ClinicalNote: converter.ClinicalNoteFromRequest(req.ClinicalNoteRequest),
	}

	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		patient, err := u.patientRepo.FindByID(tx, patientID)
		if err != nil {
			u.log.Warnf("Failed to find patient: %+v", err)
			return err
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		if req.TemplateID != nil {
			template, err := u.templateRepo.FindByID(tx, *req.TemplateID)
			if err != nil {
				u.log.Warnf("Failed to find template: %+v", err)
				return err
			}
			if template == nil {
				return ErrTemplateNotFound
			}
			record.FillBlanks(template.ClinicalNote)
		}

		if err := u.recordRepo.Create(tx, record); err != nil {
			if isForeignKeyError(err, "patient") {
				return ErrPatientNotFound
			}
			u.log.Warnf("Failed to create clinical record: %+v", err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, &actor.ID, entity.AuditActionRecordCreate,
			"clinical_record", record.ID.String(), recordSnapshot(record))
	})
	if err != nil {
		return nil, err
	}

	return converter.ClinicalRecordToResponse(record), nil
}

func (u *clinicalRecordUsecase) UpdateRecord(ctx context.Context, actor *entity.User, patientID, recordID uuid.UUID, req *dto.UpdateClinicalRecordRequest) (*dto.ClinicalRecordResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	var record *entity.ClinicalRecord
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		record, err = u.findPatientRecord(tx, patientID, recordID)
		if err != nil {
			return err
		}

		before := recordSnapshot(record)
		converter.ApplyClinicalNoteUpdate(&record.ClinicalNote, *req)

		if err := u.recordRepo.Update(tx, record); err != nil {
			u.log.Warnf("Failed to update clinical record: %+v", err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionRecordUpdate,
			"clinical_record", record.ID.String(), before, recordSnapshot(record))
	})
	if err != nil {
		return nil, err
	}

	return converter.ClinicalRecordToResponse(record), nil
}

func (u *clinicalRecordUsecase) DeleteRecord(ctx context.Context, actor *entity.User, patientID, recordID uuid.UUID) error {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return ErrUnauthorized
	}

	return u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		record, err := u.findPatientRecord(tx, patientID, recordID)
		if err != nil {
			return err
		}

		if err := u.recordRepo.Delete(tx, record.ID); err != nil {
			u.log.Warnf("Failed to delete clinical record: %+v", err)
			return err
		}

		return u.auditService.LogDelete(ctx, tx, &actor.ID, entity.AuditActionRecordDelete,
			"clinical_record", record.ID.String(), recordSnapshot(record))
	})
}

func (u *clinicalRecordUsecase) HistoryPDF(ctx context.Context, actor *entity.User, patientID uuid.UUID) (*dto.DocumentResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	patient, records, err := u.loadHistory(u.tx.DB(ctx), patientID)
	if err != nil {
		return nil, err
	}

	content, err := u.renderer.PatientHistory(patient, records, "Complete clinical history")
	if err != nil {
		u.log.Warnf("Failed to render history PDF: %+v", err)
		return nil, err
	}

	return u.document(fmt.Sprintf("history_%s", patientLabel(patient)), content), nil
}

// ComplaintPDF renders only the records whose chief complaint contains the
// given text, case-insensitively.
func (u *clinicalRecordUsecase) ComplaintPDF(ctx context.Context, actor *entity.User, patientID uuid.UUID, complaint string) (*dto.DocumentResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	complaint = strings.TrimSpace(complaint)
	if complaint == "" {
		return nil, ErrInvalidInput
	}

	patient, records, err := u.loadHistory(u.tx.DB(ctx), patientID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(complaint)
	matching := make([]entity.ClinicalRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.ChiefComplaint), needle) {
			matching = append(matching, r)
		}
	}
	if len(matching) == 0 {
		return nil, ErrNoMatchingRecords
	}

	content, err := u.renderer.PatientHistory(patient, matching, "Chief complaint: "+complaint)
	if err != nil {
		u.log.Warnf("Failed to render complaint PDF: %+v", err)
		return nil, err
	}

	prefix := complaint
	if r := []rune(prefix); len(r) > complaintFilenameWidth {
		prefix = string(r[:complaintFilenameWidth])
	}
	return u.document(fmt.Sprintf("%s_%s", prefix, patientLabel(patient)), content), nil
}

func (u *clinicalRecordUsecase) ConsultationPDF(ctx context.Context, actor *entity.User, consultationID uuid.UUID) (*dto.DocumentResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	consultation, err := u.consultationRepo.FindByID(u.tx.DB(ctx), consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation: %+v", err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	content, err := u.renderer.Consultation(consultation)
	if err != nil {
		u.log.Warnf("Failed to render consultation PDF: %+v", err)
		return nil, err
	}

	name := fmt.Sprintf("consultation_%s", consultation.ID)
	if consultation.Patient != nil {
		name += "_" + patientLabel(consultation.Patient)
	}
	return u.document(name, content), nil
}

func (u *clinicalRecordUsecase) loadHistory(db *gorm.DB, patientID uuid.UUID) (*entity.Patient, []entity.ClinicalRecord, error) {
	patient, err := u.patientRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, nil, err
	}
	if patient == nil {
		return nil, nil, ErrPatientNotFound
	}

	records, err := u.recordRepo.FindByPatientID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to list clinical records: %+v", err)
		return nil, nil, err
	}

	return patient, records, nil
}

// findPatientRecord only returns the record when it belongs to the patient in the path.
func (u *clinicalRecordUsecase) findPatientRecord(db *gorm.DB, patientID, recordID uuid.UUID) (*entity.ClinicalRecord, error) {
	record, err := u.recordRepo.FindByID(db, recordID)
	if err != nil {
		u.log.Warnf("Failed to find clinical record: %+v", err)
		return nil, err
	}
	if record == nil || record.PatientID != patientID {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

func (u *clinicalRecordUsecase) document(name string, content []byte) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Filename:    sanitizeFilename(name + "_" + u.now().UTC().Format("20060102_150405") + ".pdf"),
		ContentType: pdfContentType,
		Content:     content,
	}
}

func patientLabel(p *entity.Patient) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// sanitizeFilename keeps letters, digits, dot, dash, underscore and @; everything else becomes _.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.' || r == '-' || r == '_' || r == '@':
			return r
		default:
			return '_'
		}
	}, name)
}

func recordSnapshot(r *entity.ClinicalRecord) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":      r.PatientID,
		"chief_complaint": r.ChiefComplaint,
		"background":      r.Background,
		"assessment":      r.Assessment,
		"plan":            r.Plan,
		"allergies":       r.Allergies,
		"medications":     r.Medications,
	}
}
