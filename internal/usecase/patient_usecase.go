package usecase

import (
	"context"
	"errors"
	"strings"

	"telemed-clinic-backend/internal/converter"
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"
	"telemed-clinic-backend/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
)

var ErrPatientNotFound = errors.New("patient not found")

const (
	defaultPatientSearchLimit = 200
	maxPatientSearchLimit     = 500
)

type PatientUsecase interface {
	// SearchPatients is the administrative directory lookup.
	SearchPatients(ctx context.Context, actor *entity.User, req *dto.PatientFilterRequest) ([]dto.PatientResponse, error)
	// ListPatientsWithStats lists every patient with their clinical record counts.
	ListPatientsWithStats(ctx context.Context, actor *entity.User) ([]dto.PatientWithStatsResponse, error)
}

type patientUsecase struct {
	tx          database.Transactor
	log         *logrus.Logger
	patientRepo repository.PatientRepository
	recordRepo  repository.ClinicalRecordRepository
}

func NewPatientUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	recordRepo repository.ClinicalRecordRepository,
) PatientUsecase {
	return &patientUsecase{
		tx:          tx,
		log:         log,
		patientRepo: patientRepo,
		recordRepo:  recordRepo,
	}
}

func (u *patientUsecase) SearchPatients(ctx context.Context, actor *entity.User, req *dto.PatientFilterRequest) ([]dto.PatientResponse, error) {
	if !actor.Can(entity.CapAdministerClinic) {
		return nil, ErrUnauthorized
	}

	filter := entity.PatientFilter{Limit: defaultPatientSearchLimit}
	if req != nil {
		filter.Query = strings.TrimSpace(req.Query)
		filter.Limit = clampLimit(req.Limit, defaultPatientSearchLimit, maxPatientSearchLimit)
	}

	patients, err := u.patientRepo.Search(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search patients: %+v", err)
		return nil, err
	}

	return converter.PatientsToResponses(patients), nil
}

func (u *patientUsecase) ListPatientsWithStats(ctx context.Context, actor *entity.User) ([]dto.PatientWithStatsResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	db := u.tx.DB(ctx)
	patients, err := u.patientRepo.FindAll(db)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	stats, err := u.recordRepo.StatsByPatient(db)
	if err != nil {
		u.log.Warnf("Failed to load record stats: %+v", err)
		return nil, err
	}

	return converter.PatientsWithStatsToResponses(patients, stats), nil
}
