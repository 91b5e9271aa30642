package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

// In-memory doubles for the repositories. Lookups return copies so a failed
// transaction cannot leak mutations into the store.

type fakeTransactor struct{}

func (fakeTransactor) DB(ctx context.Context) *gorm.DB { return nil }

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]entity.User{}}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(db *gorm.DB, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByLicenseNumber(db *gorm.DB, licenseNumber string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.LicenseNumber != nil && *u.LicenseNumber == licenseNumber {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindMedicalProfessionals(db *gorm.DB, activeOnly bool) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []entity.User
	for _, u := range r.users {
		if !u.IsMedicalProfessional || (activeOnly && !u.Active()) {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

func (r *fakeUserRepo) UpdateLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.LastLogin = &at
	r.users[id] = u
	return nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]entity.Patient
}

func newFakePatientRepo(patients ...*entity.Patient) *fakePatientRepo {
	r := &fakePatientRepo{patients: map[uuid.UUID]entity.Patient{}}
	for _, p := range patients {
		r.patients[p.ID] = *p
	}
	return r
}

func (r *fakePatientRepo) FindOrCreateByEmail(db *gorm.DB, patient *entity.Patient) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.Email == patient.Email {
			p := p
			return &p, nil
		}
	}
	created := *patient
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.patients[created.ID] = created
	return &created, nil
}

func (r *fakePatientRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePatientRepo) FindByEmail(db *gorm.DB, email string) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.Email == email {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) Search(db *gorm.DB, filter entity.PatientFilter) ([]entity.Patient, error) {
	all, _ := r.FindAll(db)
	var patients []entity.Patient
	query := strings.ToLower(filter.Query)
	for _, p := range all {
		if query != "" && !strings.Contains(strings.ToLower(p.Email), query) &&
			!strings.Contains(strings.ToLower(p.FullName), query) {
			continue
		}
		patients = append(patients, p)
		if filter.Limit > 0 && len(patients) == filter.Limit {
			break
		}
	}
	return patients, nil
}

func (r *fakePatientRepo) FindAll(db *gorm.DB) ([]entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	patients := make([]entity.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		patients = append(patients, p)
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].FullName < patients[j].FullName })
	return patients, nil
}

func (r *fakePatientRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.patients)
}

type fakeConsultationRepo struct {
	mu            sync.Mutex
	consultations map[uuid.UUID]entity.Consultation
	// statusWrites counts successful compare-and-set status updates.
	statusWrites int
	// afterLockedRead runs after FindByIDForUpdate, standing in for a writer that
	// commits between the read and the update.
	afterLockedRead func(c entity.Consultation)
}

func newFakeConsultationRepo(consultations ...*entity.Consultation) *fakeConsultationRepo {
	r := &fakeConsultationRepo{consultations: map[uuid.UUID]entity.Consultation{}}
	for _, c := range consultations {
		r.consultations[c.ID] = *c
	}
	return r
}

func (r *fakeConsultationRepo) Create(db *gorm.DB, consultation *entity.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if consultation.ID == uuid.Nil {
		consultation.ID = uuid.New()
	}
	consultation.CreatedAt = time.Now()
	consultation.UpdatedAt = consultation.CreatedAt
	stored := *consultation
	stored.Patient, stored.Doctor = nil, nil
	r.consultations[stored.ID] = stored
	return nil
}

func (r *fakeConsultationRepo) UpdateDetails(db *gorm.DB, consultation *entity.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.consultations[consultation.ID]
	if !ok {
		return nil
	}
	stored.DoctorID = consultation.DoctorID
	stored.ScheduledAt = consultation.ScheduledAt
	stored.DurationMinutes = consultation.DurationMinutes
	stored.Notes = consultation.Notes
	r.consultations[stored.ID] = stored
	return nil
}

func (r *fakeConsultationRepo) UpdateStatus(db *gorm.DB, consultation *entity.Consultation, from entity.ConsultationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.consultations[consultation.ID]
	if !ok || stored.Status != from {
		return 0, nil
	}
	stored.Status = consultation.Status
	stored.StartedAt = consultation.StartedAt
	stored.EndedAt = consultation.EndedAt
	stored.RoomName = consultation.RoomName
	stored.RoomURL = consultation.RoomURL
	r.consultations[stored.ID] = stored
	r.statusWrites++
	return 1, nil
}

func (r *fakeConsultationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeConsultationRepo) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	c, err := r.FindByID(db, id)
	if c != nil && r.afterLockedRead != nil {
		r.afterLockedRead(*c)
	}
	return c, err
}

func (r *fakeConsultationRepo) FindAll(db *gorm.DB, filter entity.ConsultationFilter) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var consultations []entity.Consultation
	for _, c := range r.consultations {
		if filter.DoctorID != nil && c.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.PatientID != nil && c.PatientID != *filter.PatientID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.From != nil && c.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !c.ScheduledAt.Before(*filter.To) {
			continue
		}
		consultations = append(consultations, c)
	}
	sort.Slice(consultations, func(i, j int) bool {
		return consultations[i].ScheduledAt.Before(consultations[j].ScheduledAt)
	})
	if filter.Limit > 0 && len(consultations) > filter.Limit {
		consultations = consultations[:filter.Limit]
	}
	return consultations, nil
}

func (r *fakeConsultationRepo) get(id uuid.UUID) entity.Consultation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consultations[id]
}

type fakePaymentRepo struct {
	mu            sync.Mutex
	payments      map[uuid.UUID]entity.Payment
	consultations *fakeConsultationRepo
	// failNext makes the next write return the error.
	failNext error
}

func newFakePaymentRepo(consultations *fakeConsultationRepo) *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uuid.UUID]entity.Payment{}, consultations: consultations}
}

func (r *fakePaymentRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakePaymentRepo) FindOrCreateForConsultation(db *gorm.DB, payment *entity.Payment) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ConsultationID == payment.ConsultationID {
			p := p
			return &p, nil
		}
	}
	created := *payment
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.payments[created.ID] = created
	return &created, nil
}

func (r *fakePaymentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePaymentRepo) FindByPaymentIntentID(db *gorm.DB, intentID string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ExternalPaymentIntentID != nil && *p.ExternalPaymentIntentID == intentID {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, skip, limit int) ([]entity.Payment, error) {
	r.mu.Lock()
	var payments []entity.Payment
	for _, p := range r.payments {
		payments = append(payments, p)
	}
	r.mu.Unlock()

	var matched []entity.Payment
	for _, p := range payments {
		c := r.consultations.get(p.ConsultationID)
		if c.DoctorID != doctorID {
			continue
		}
		p.Consultation = &c
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakePaymentRepo) SetSessionID(db *gorm.DB, id uuid.UUID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.payments[id]
	p.ExternalSessionID = &sessionID
	r.payments[id] = p
	return nil
}

func (r *fakePaymentRepo) MarkCompleted(db *gorm.DB, id uuid.UUID, intentID, customerID *string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return 0, err
	}
	p, ok := r.payments[id]
	if !ok || p.Status == entity.PaymentStatusCompleted || p.Status == entity.PaymentStatusRefunded {
		return 0, nil
	}
	p.Status = entity.PaymentStatusCompleted
	p.CompletedAt = &at
	if intentID != nil {
		p.ExternalPaymentIntentID = intentID
	}
	if customerID != nil {
		p.ExternalCustomerID = customerID
	}
	r.payments[id] = p
	return 1, nil
}

func (r *fakePaymentRepo) MarkFailed(db *gorm.DB, id uuid.UUID, intentID *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return 0, err
	}
	p, ok := r.payments[id]
	if !ok || (p.Status != entity.PaymentStatusPending && p.Status != entity.PaymentStatusProcessing) {
		return 0, nil
	}
	p.Status = entity.PaymentStatusFailed
	if intentID != nil {
		p.ExternalPaymentIntentID = intentID
	}
	r.payments[id] = p
	return 1, nil
}

func (r *fakePaymentRepo) get(id uuid.UUID) entity.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[id]
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]entity.ClinicalRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[uuid.UUID]entity.ClinicalRecord{}}
}

func (r *fakeRecordRepo) Create(db *gorm.DB, record *entity.ClinicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.records[record.ID] = *record
	return nil
}

func (r *fakeRecordRepo) Update(db *gorm.DB, record *entity.ClinicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = *record
	return nil
}

func (r *fakeRecordRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *fakeRecordRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeRecordRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.ClinicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var records []entity.ClinicalRecord
	for _, rec := range r.records {
		if rec.PatientID == patientID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	return records, nil
}

func (r *fakeRecordRepo) StatsByPatient(db *gorm.DB) ([]entity.PatientRecordStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byPatient := map[uuid.UUID]*entity.PatientRecordStats{}
	for _, rec := range r.records {
		s, ok := byPatient[rec.PatientID]
		if !ok {
			s = &entity.PatientRecordStats{PatientID: rec.PatientID}
			byPatient[rec.PatientID] = s
		}
		s.RecordsCount++
		created := rec.CreatedAt
		if s.LatestRecordAt == nil || created.After(*s.LatestRecordAt) {
			s.LatestRecordAt = &created
		}
	}
	var stats []entity.PatientRecordStats
	for _, s := range byPatient {
		stats = append(stats, *s)
	}
	return stats, nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]entity.ClinicalTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[uuid.UUID]entity.ClinicalTemplate{}}
}

func (r *fakeTemplateRepo) Create(db *gorm.DB, template *entity.ClinicalTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	template.ID = uuid.New()
	template.CreatedAt = time.Now()
	r.templates[template.ID] = *template
	return nil
}

func (r *fakeTemplateRepo) Update(db *gorm.DB, template *entity.ClinicalTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.ID] = *template
	return nil
}

func (r *fakeTemplateRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.templates, id)
	return nil
}

func (r *fakeTemplateRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicalTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeTemplateRepo) FindAll(db *gorm.DB) ([]entity.ClinicalTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var templates []entity.ClinicalTemplate
	for _, t := range r.templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *fakeAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = int64(len(r.logs) + 1)
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(db *gorm.DB, action string, limit int) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var logs []entity.AuditLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if action != "" && r.logs[i].Action != action {
			continue
		}
		logs = append(logs, r.logs[i])
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}

func (r *fakeAuditRepo) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.logs))
	for _, l := range r.logs {
		actions = append(actions, l.Action)
	}
	return actions
}

type sentNotification struct {
	Kind      service.NotificationKind
	Recipient string
	Data      service.NotificationData
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(kind service.NotificationKind, recipient string, data service.NotificationData) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Kind: kind, Recipient: recipient, Data: data})
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) kinds() []service.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]service.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func newDoctor(name string) *entity.User {
	return &entity.User{
		ID:                    uuid.New(),
		Email:                 strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@clinic.example",
		FullName:              name,
		Role:                  entity.RoleSpecialist,
		Specialty:             "Dermatology",
		IsActive:              boolPtr(true),
		IsMedicalProfessional: true,
	}
}

func newStaff(role entity.Role) *entity.User {
	return &entity.User{
		ID:       uuid.New(),
		Email:    string(role) + "@clinic.example",
		FullName: "Staff " + string(role),
		Role:     role,
		IsActive: boolPtr(true),
	}
}
