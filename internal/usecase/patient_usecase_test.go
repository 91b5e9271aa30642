package usecase

import (
	"context"
	"testing"
	"time"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPatients(t *testing.T) {
	patients := newFakePatientRepo(
		&entity.Patient{ID: uuid.New(), FullName: "Ana Silva", Email: "ana@x.com"},
		&entity.Patient{ID: uuid.New(), FullName: "Bruno Costa", Email: "bruno@y.com"},
		&entity.Patient{ID: uuid.New(), FullName: "Carla Silva", Email: "carla@x.com"},
	)
	uc := NewPatientUsecase(fakeTransactor{}, newTestLogger(), patients, newFakeRecordRepo())
	reception := newStaff(entity.RoleReception)

	got, err := uc.SearchPatients(context.Background(), reception, &dto.PatientFilterRequest{Query: " silva "})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana Silva", got[0].FullName)

	got, err = uc.SearchPatients(context.Background(), reception, &dto.PatientFilterRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = uc.SearchPatients(context.Background(), reception, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = uc.SearchPatients(context.Background(), newDoctor("Dana Doctor"), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListPatientsWithStats(t *testing.T) {
	ana := &entity.Patient{ID: uuid.New(), FullName: "Ana", Email: "ana@x.com"}
	bruno := &entity.Patient{ID: uuid.New(), FullName: "Bruno", Email: "bruno@x.com"}
	records := newFakeRecordRepo()
	latest := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	records.records[uuid.New()] = entity.ClinicalRecord{PatientID: ana.ID, CreatedAt: latest.Add(-time.Hour)}
	records.records[uuid.New()] = entity.ClinicalRecord{PatientID: ana.ID, CreatedAt: latest}

	uc := NewPatientUsecase(fakeTransactor{}, newTestLogger(), newFakePatientRepo(ana, bruno), records)

	got, err := uc.ListPatientsWithStats(context.Background(), newDoctor("Dana Doctor"))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Ana", got[0].FullName)
	assert.Equal(t, int64(2), got[0].RecordsCount)
	require.NotNil(t, got[0].LatestRecordAt)
	assert.True(t, latest.Equal(*got[0].LatestRecordAt))

	assert.Equal(t, "Bruno", got[1].FullName)
	assert.Zero(t, got[1].RecordsCount)
	assert.Nil(t, got[1].LatestRecordAt)

	_, err = uc.ListPatientsWithStats(context.Background(), newStaff(entity.RoleReception))
	assert.ErrorIs(t, err, ErrUnauthorized)
}
