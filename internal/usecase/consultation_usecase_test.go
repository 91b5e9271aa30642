package usecase

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	usecase       ConsultationUsecase
	consultations *fakeConsultationRepo
	patients      *fakePatientRepo
	users         *fakeUserRepo
	audit         *fakeAuditRepo
	notifier      *recordingNotifier
	doctor        *entity.User
}

func newLedgerFixture(t *testing.T, extraUsers ...*entity.User) *ledgerFixture {
	t.Helper()

	doctor := newDoctor("Dana Doctor")
	f := &ledgerFixture{
		consultations: newFakeConsultationRepo(),
		patients:      newFakePatientRepo(),
		users:         newFakeUserRepo(append([]*entity.User{doctor}, extraUsers...)...),
		audit:         &fakeAuditRepo{},
		notifier:      &recordingNotifier{},
		doctor:        doctor,
	}
	log := newTestLogger()
	f.usecase = NewConsultationUsecase(
		fakeTransactor{},
		log,
		f.consultations,
		f.patients,
		f.users,
		service.NewRoomProvisioner("meet.example.org"),
		f.notifier,
		service.NewAuditService(log, f.audit),
		nil,
	)
	return f
}

func (f *ledgerFixture) book(t *testing.T, email string, consultationType string) *dto.ConsultationResponse {
	t.Helper()
	resp, err := f.usecase.BookPublic(context.Background(), &dto.PublicBookingRequest{
		Patient:          dto.PatientRequest{FullName: "Ana Patient", Email: email, Phone: "+351900000000"},
		DoctorID:         f.doctor.ID,
		ConsultationType: consultationType,
		ScheduledAt:      "2025-01-10T09:00",
	})
	require.NoError(t, err)
	return resp
}

func TestBookPublic_VideoConfirmsWithRoom(t *testing.T) {
	f := newLedgerFixture(t)

	resp := f.book(t, "a@x.com", "video")

	assert.Equal(t, string(entity.ConsultationStatusConfirmed), resp.Status)
	assert.Equal(t, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), resp.ScheduledAt)
	require.NotNil(t, resp.RoomURL)
	pattern := fmt.Sprintf(`^https://meet\.example\.org/Telemed_%s_[0-9a-f]{8}$`, regexp.QuoteMeta(resp.ID.String()))
	assert.Regexp(t, pattern, *resp.RoomURL)
	require.NotNil(t, resp.RoomName)
	assert.Equal(t, entity.DefaultConsultationDuration, resp.DurationMinutes)
	assert.Equal(t, "Dermatology", resp.Specialty)

	stored := f.consultations.get(resp.ID)
	assert.Equal(t, entity.ConsultationStatusConfirmed, stored.Status)
	assert.Equal(t, *resp.RoomURL, *stored.RoomURL)

	assert.ElementsMatch(t,
		[]service.NotificationKind{service.NotifyConsultationConfirmed, service.NotifyDoctorNewConsultation},
		f.notifier.kinds())
}

func TestBookPublic_NonVideoHasNoRoom(t *testing.T) {
	f := newLedgerFixture(t)

	resp := f.book(t, "b@x.com", "phone")

	assert.Equal(t, string(entity.ConsultationStatusConfirmed), resp.Status)
	assert.Nil(t, resp.RoomURL)
	assert.Nil(t, resp.RoomName)
}

func TestBookPublic_DefaultsToVideo(t *testing.T) {
	f := newLedgerFixture(t)

	resp := f.book(t, "c@x.com", "")

	assert.Equal(t, string(entity.ConsultationTypeVideo), resp.ConsultationType)
	assert.NotNil(t, resp.RoomURL)
}

func TestBookPublic_UpsertsPatientByEmail(t *testing.T) {
	f := newLedgerFixture(t)

	first := f.book(t, "a@x.com", "video")
	for i := 0; i < 4; i++ {
		again := f.book(t, "a@x.com", "video")
		assert.Equal(t, first.PatientID, again.PatientID)
	}
	f.book(t, "other@x.com", "video")

	assert.Equal(t, 2, f.patients.count())
}

func TestBookPublic_RejectsNonMedicalDoctor(t *testing.T) {
	receptionist := newStaff(entity.RoleReception)
	f := newLedgerFixture(t, receptionist)

	_, err := f.usecase.BookPublic(context.Background(), &dto.PublicBookingRequest{
		Patient:     dto.PatientRequest{FullName: "Ana", Email: "a@x.com"},
		DoctorID:    receptionist.ID,
		ScheduledAt: "2025-01-10T09:00:00Z",
	})

	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Equal(t, 0, f.patients.count())
	assert.Empty(t, f.notifier.kinds())
}

func TestBookPublic_RejectsUnknownDoctor(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.usecase.BookPublic(context.Background(), &dto.PublicBookingRequest{
		Patient:     dto.PatientRequest{FullName: "Ana", Email: "a@x.com"},
		DoctorID:    uuid.New(),
		ScheduledAt: "2025-01-10T09:00:00Z",
	})

	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestBookPublic_RejectsUnparseableTimestamp(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.usecase.BookPublic(context.Background(), &dto.PublicBookingRequest{
		Patient:     dto.PatientRequest{FullName: "Ana", Email: "a@x.com"},
		DoctorID:    f.doctor.ID,
		ScheduledAt: "next tuesday",
	})

	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	for _, value := range []string{
		"2025-01-10T09:00:00Z",
		"2025-01-10T10:00:00+01:00",
		"2025-01-10T09:00:00",
		"2025-01-10T09:00",
		"2025-01-10 09:00:00",
	} {
		got, err := parseTimestamp(value)
		require.NoError(t, err, value)
		assert.True(t, want.Equal(got), value)
		assert.Equal(t, time.UTC, got.Location(), value)
	}

	_, err := parseTimestamp("2025-13-40")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestCreateByStaff_SpecialistForcedAsDoctor(t *testing.T) {
	specialist := newDoctor("Sam Specialist")
	f := newLedgerFixture(t, specialist)

	resp, err := f.usecase.CreateByStaff(context.Background(), specialist, &dto.CreateConsultationRequest{
		Patient:     &dto.PatientRequest{FullName: "Ana", Email: "a@x.com"},
		DoctorID:    &f.doctor.ID,
		ScheduledAt: "2025-01-10T09:00:00Z",
	})

	require.NoError(t, err)
	assert.Equal(t, specialist.ID, resp.DoctorID)
	assert.Equal(t, []string{entity.AuditActionConsultationCreate}, f.audit.actions())
}

func TestCreateByStaff_ReceptionBooksExistingPatient(t *testing.T) {
	reception := newStaff(entity.RoleReception)
	patient := &entity.Patient{ID: uuid.New(), FullName: "Ana", Email: "a@x.com"}
	f := newLedgerFixture(t, reception)
	f.patients = newFakePatientRepo(patient)
	f.usecase.(*consultationUsecase).patientRepo = f.patients

	resp, err := f.usecase.CreateByStaff(context.Background(), reception, &dto.CreateConsultationRequest{
		PatientID:        &patient.ID,
		DoctorID:         &f.doctor.ID,
		ConsultationType: "in_person",
		ScheduledAt:      "2025-01-10T09:00:00Z",
	})

	require.NoError(t, err)
	assert.Equal(t, patient.ID, resp.PatientID)
	assert.Equal(t, f.doctor.ID, resp.DoctorID)
	assert.Nil(t, resp.RoomURL)
}

func TestCreateByStaff_Failures(t *testing.T) {
	reception := newStaff(entity.RoleReception)
	unknown := uuid.New()

	tests := []struct {
		name  string
		actor *entity.User
		req   dto.CreateConsultationRequest
		want  error
	}{
		{
			name:  "role without capability",
			actor: &entity.User{ID: uuid.New(), Role: entity.Role("visitor")},
			req:   dto.CreateConsultationRequest{Patient: &dto.PatientRequest{Email: "a@x.com"}, ScheduledAt: "2025-01-10T09:00"},
			want:  ErrUnauthorized,
		},
		{
			name:  "no patient",
			actor: reception,
			req:   dto.CreateConsultationRequest{ScheduledAt: "2025-01-10T09:00"},
			want:  ErrMissingPatient,
		},
		{
			name:  "unknown patient id and no doctor",
			actor: reception,
			req:   dto.CreateConsultationRequest{PatientID: &unknown, ScheduledAt: "2025-01-10T09:00"},
			want:  ErrMissingDoctor,
		},
		{
			name:  "no doctor",
			actor: reception,
			req:   dto.CreateConsultationRequest{Patient: &dto.PatientRequest{Email: "a@x.com"}, ScheduledAt: "2025-01-10T09:00"},
			want:  ErrMissingDoctor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, reception)
			req := tt.req
			_, err := f.usecase.CreateByStaff(context.Background(), tt.actor, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateByStaff_UnknownPatientIDWithoutInlineData(t *testing.T) {
	reception := newStaff(entity.RoleReception)
	f := newLedgerFixture(t, reception)
	unknown := uuid.New()

	_, err := f.usecase.CreateByStaff(context.Background(), reception, &dto.CreateConsultationRequest{
		PatientID:   &unknown,
		DoctorID:    &f.doctor.ID,
		ScheduledAt: "2025-01-10T09:00",
	})

	assert.ErrorIs(t, err, ErrMissingPatient)
}

func (f *ledgerFixture) seed(status entity.ConsultationStatus) *entity.Consultation {
	c := &entity.Consultation{
		ID:               uuid.New(),
		PatientID:        uuid.New(),
		DoctorID:         f.doctor.ID,
		ConsultationType: entity.ConsultationTypeVideo,
		ScheduledAt:      time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		DurationMinutes:  30,
		Status:           status,
	}
	_ = f.consultations.Create(nil, c)
	return c
}

func TestUpdateConsultation_NonMedicalDoctorLeavesConsultationUnchanged(t *testing.T) {
	admin := newStaff(entity.RoleMedicalAdmin)
	receptionist := newStaff(entity.RoleReception)
	f := newLedgerFixture(t, admin, receptionist)
	c := f.seed(entity.ConsultationStatusConfirmed)
	before := f.consultations.get(c.ID)

	_, err := f.usecase.UpdateConsultation(context.Background(), admin, c.ID, &dto.UpdateConsultationRequest{
		DoctorID: &receptionist.ID,
		Notes:    strPtr("moved"),
	})

	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Equal(t, before, f.consultations.get(c.ID))
	assert.Empty(t, f.audit.actions())
}

func TestUpdateConsultation_Validation(t *testing.T) {
	admin := newStaff(entity.RoleMedicalAdmin)

	tests := []struct {
		name string
		req  dto.UpdateConsultationRequest
		want error
	}{
		{name: "unknown status", req: dto.UpdateConsultationRequest{Status: strPtr("archived")}, want: ErrInvalidStatus},
		{name: "bad timestamp", req: dto.UpdateConsultationRequest{ScheduledAt: strPtr("10/01/2025")}, want: ErrInvalidTimestamp},
		{name: "edge outside graph", req: dto.UpdateConsultationRequest{Status: strPtr("pending")}, want: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, admin)
			c := f.seed(entity.ConsultationStatusCompleted)
			req := tt.req
			_, err := f.usecase.UpdateConsultation(context.Background(), admin, c.ID, &req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, entity.ConsultationStatusCompleted, f.consultations.get(c.ID).Status)
		})
	}
}

func TestUpdateConsultation_NotFound(t *testing.T) {
	admin := newStaff(entity.RoleMedicalAdmin)
	f := newLedgerFixture(t, admin)

	_, err := f.usecase.UpdateConsultation(context.Background(), admin, uuid.New(), &dto.UpdateConsultationRequest{})

	assert.ErrorIs(t, err, ErrConsultationNotFound)
}

func TestUpdateConsultation_AppliesFieldsAndAudits(t *testing.T) {
	admin := newStaff(entity.RoleMedicalAdmin)
	other := newDoctor("Omar Other")
	f := newLedgerFixture(t, admin, other)
	c := f.seed(entity.ConsultationStatusConfirmed)
	duration := 45

	resp, err := f.usecase.UpdateConsultation(context.Background(), admin, c.ID, &dto.UpdateConsultationRequest{
		DoctorID:        &other.ID,
		ScheduledAt:     strPtr("2025-02-01T14:30:00Z"),
		DurationMinutes: &duration,
		Status:          strPtr("no_show"),
		Notes:           strPtr("patient did not join"),
	})

	require.NoError(t, err)
	assert.Equal(t, other.ID, resp.DoctorID)
	assert.Equal(t, string(entity.ConsultationStatusNoShow), resp.Status)

	stored := f.consultations.get(c.ID)
	assert.Equal(t, other.ID, stored.DoctorID)
	assert.Equal(t, 45, stored.DurationMinutes)
	assert.Equal(t, "patient did not join", stored.Notes)
	assert.Equal(t, entity.ConsultationStatusNoShow, stored.Status)
	assert.Equal(t, []string{entity.AuditActionConsultationUpdate}, f.audit.actions())
}

func TestUpdateConsultation_OverrideRequiresCapability(t *testing.T) {
	reception := newStaff(entity.RoleReception)
	f := newLedgerFixture(t, reception)
	c := f.seed(entity.ConsultationStatusCompleted)

	_, err := f.usecase.UpdateConsultation(context.Background(), reception, c.ID, &dto.UpdateConsultationRequest{
		Status:   strPtr("confirmed"),
		Override: true,
	})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateConsultation_OverrideBypassesGraphAndIsAudited(t *testing.T) {
	admin := newStaff(entity.RoleITAdmin)
	f := newLedgerFixture(t, admin)
	c := f.seed(entity.ConsultationStatusCompleted)

	resp, err := f.usecase.UpdateConsultation(context.Background(), admin, c.ID, &dto.UpdateConsultationRequest{
		Status:   strPtr("confirmed"),
		Override: true,
	})

	require.NoError(t, err)
	assert.Equal(t, string(entity.ConsultationStatusConfirmed), resp.Status)
	assert.Equal(t, []string{entity.AuditActionConsultationOverride}, f.audit.actions())
}

func TestUpdateConsultation_AssignedDoctorMayUpdate(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.seed(entity.ConsultationStatusConfirmed)
	stranger := newDoctor("Stranger")

	_, err := f.usecase.UpdateConsultation(context.Background(), f.doctor, c.ID, &dto.UpdateConsultationRequest{Notes: strPtr("ok")})
	require.NoError(t, err)

	_, err = f.usecase.UpdateConsultation(context.Background(), stranger, c.ID, &dto.UpdateConsultationRequest{Notes: strPtr("no")})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateConsultation_KeepsConcurrentStatusChange(t *testing.T) {
	admin := newStaff(entity.RoleMedicalAdmin)
	f := newLedgerFixture(t, admin)
	c := f.seed(entity.ConsultationStatusConfirmed)
	startedAt := time.Date(2025, 1, 10, 9, 1, 0, 0, time.UTC)

	// The doctor starts the call after the admin's read.
	f.consultations.afterLockedRead = func(read entity.Consultation) {
		f.consultations.afterLockedRead = nil
		started := read
		started.Status = entity.ConsultationStatusInProgress
		started.StartedAt = &startedAt
		started.AssignRoom("Telemed_room", "https://meet.example/Telemed_room")
		rows, err := f.consultations.UpdateStatus(nil, &started, entity.ConsultationStatusConfirmed)
		require.NoError(t, err)
		require.Equal(t, int64(1), rows)
	}

	_, err := f.usecase.UpdateConsultation(context.Background(), admin, c.ID, &dto.UpdateConsultationRequest{
		Notes: strPtr("interpreter needed"),
	})
	require.NoError(t, err)

	stored := f.consultations.get(c.ID)
	assert.Equal(t, "interpreter needed", stored.Notes)
	assert.Equal(t, entity.ConsultationStatusInProgress, stored.Status)
	require.NotNil(t, stored.StartedAt)
	assert.True(t, startedAt.Equal(*stored.StartedAt))
	require.NotNil(t, stored.RoomName)
	assert.Equal(t, "Telemed_room", *stored.RoomName)
}

func TestStartVideo_RequiresConfirmed(t *testing.T) {
	for _, status := range []entity.ConsultationStatus{
		entity.ConsultationStatusPending,
		entity.ConsultationStatusInProgress,
		entity.ConsultationStatusCompleted,
		entity.ConsultationStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newLedgerFixture(t)
			c := f.seed(status)

			_, err := f.usecase.StartVideo(context.Background(), f.doctor, c.ID)

			assert.ErrorIs(t, err, ErrInvalidState)
			stored := f.consultations.get(c.ID)
			assert.Nil(t, stored.StartedAt)
			assert.Equal(t, status, stored.Status)
		})
	}
}

func TestStartVideo_OnlyAssignedDoctor(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.seed(entity.ConsultationStatusConfirmed)

	_, err := f.usecase.StartVideo(context.Background(), newDoctor("Other"), c.ID)

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Nil(t, f.consultations.get(c.ID).StartedAt)
}

func TestStartAndEndVideo(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.seed(entity.ConsultationStatusConfirmed)

	info, err := f.usecase.StartVideo(context.Background(), f.doctor, c.ID)
	require.NoError(t, err)
	assert.True(t, info.IsDoctor)
	assert.Equal(t, string(entity.ConsultationStatusInProgress), info.Status)
	assert.Contains(t, info.RoomURL, "https://meet.example.org/Telemed_"+c.ID.String()+"_")

	stored := f.consultations.get(c.ID)
	require.NotNil(t, stored.StartedAt)
	assert.Equal(t, entity.ConsultationStatusInProgress, stored.Status)

	_, err = f.usecase.StartVideo(context.Background(), f.doctor, c.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	resp, err := f.usecase.EndVideo(context.Background(), f.doctor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ConsultationStatusCompleted), resp.Status)
	require.NotNil(t, resp.EndedAt)

	_, err = f.usecase.EndVideo(context.Background(), f.doctor, c.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStartVideo_KeepsBookedRoom(t *testing.T) {
	f := newLedgerFixture(t)
	booked := f.book(t, "a@x.com", "video")

	info, err := f.usecase.StartVideo(context.Background(), f.doctor, booked.ID)

	require.NoError(t, err)
	assert.Equal(t, *booked.RoomURL, info.RoomURL)
}

func TestEndVideo_OnlyAssignedDoctor(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.seed(entity.ConsultationStatusInProgress)

	_, err := f.usecase.EndVideo(context.Background(), newDoctor("Other"), c.ID)

	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestGetVideoInfo(t *testing.T) {
	admin := newStaff(entity.RoleAdministration)
	f := newLedgerFixture(t, admin)
	withoutRoom := f.seed(entity.ConsultationStatusConfirmed)
	booked := f.book(t, "a@x.com", "video")

	_, err := f.usecase.GetVideoInfo(context.Background(), f.doctor, withoutRoom.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	info, err := f.usecase.GetVideoInfo(context.Background(), admin, booked.ID)
	require.NoError(t, err)
	assert.False(t, info.IsDoctor)
	assert.Equal(t, *booked.RoomURL, info.RoomURL)

	_, err = f.usecase.GetVideoInfo(context.Background(), newDoctor("Other"), booked.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestListConsultations_Filters(t *testing.T) {
	admin := newStaff(entity.RoleMedicalAdmin)
	f := newLedgerFixture(t, admin)
	early := f.seed(entity.ConsultationStatusConfirmed)
	later := f.seed(entity.ConsultationStatusCompleted)
	later.ScheduledAt = early.ScheduledAt.Add(2 * time.Hour)
	_ = f.consultations.UpdateDetails(nil, later)
	nextDay := f.seed(entity.ConsultationStatusConfirmed)
	nextDay.ScheduledAt = early.ScheduledAt.AddDate(0, 0, 1)
	_ = f.consultations.UpdateDetails(nil, nextDay)

	resp, err := f.usecase.ListConsultations(context.Background(), admin, &dto.ConsultationFilterRequest{Day: "2025-01-10"})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, early.ID, resp.Consultations[0].ID)
	assert.Equal(t, later.ID, resp.Consultations[1].ID)

	resp, err = f.usecase.ListConsultations(context.Background(), admin, &dto.ConsultationFilterRequest{Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, later.ID, resp.Consultations[0].ID)

	_, err = f.usecase.ListConsultations(context.Background(), admin, &dto.ConsultationFilterRequest{Day: "10-01-2025"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.usecase.ListConsultations(context.Background(), admin, &dto.ConsultationFilterRequest{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.usecase.ListConsultations(context.Background(), f.doctor, &dto.ConsultationFilterRequest{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBuildConsultationFilter_Limits(t *testing.T) {
	filter, err := buildConsultationFilter(&dto.ConsultationFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 500, filter.Limit)

	filter, err = buildConsultationFilter(&dto.ConsultationFilterRequest{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1000, filter.Limit)

	filter, err = buildConsultationFilter(&dto.ConsultationFilterRequest{Day: "2025-01-10"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), *filter.From)
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), *filter.To)
}

func TestListMyConsultations(t *testing.T) {
	reception := newStaff(entity.RoleReception)
	f := newLedgerFixture(t, reception)
	f.seed(entity.ConsultationStatusConfirmed)
	other := newDoctor("Other")
	c := f.seed(entity.ConsultationStatusConfirmed)
	c.DoctorID = other.ID
	_ = f.consultations.UpdateDetails(nil, c)

	resp, err := f.usecase.ListMyConsultations(context.Background(), f.doctor, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	_, err = f.usecase.ListMyConsultations(context.Background(), reception, 0)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListMyConsultations_CapsPageSize(t *testing.T) {
	f := newLedgerFixture(t)
	for i := 0; i < 3; i++ {
		f.seed(entity.ConsultationStatusConfirmed)
	}

	resp, err := f.usecase.ListMyConsultations(context.Background(), f.doctor, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = f.usecase.ListMyConsultations(context.Background(), f.doctor, 100000)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 500, clampLimit(100000, defaultMyConsultationLimit, maxMyConsultationLimit))
}
