package usecase

import (
	"context"
	"strings"

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

type ClinicalTemplateUsecase interface {
	ListTemplates(ctx context.Context, actor *entity.User) ([]dto.ClinicalTemplateResponse, error)
	GetTemplate(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.ClinicalTemplateResponse, error)
	CreateTemplate(ctx context.Context, actor *entity.User, req *dto.ClinicalTemplateRequest) (*dto.ClinicalTemplateResponse, error)
	UpdateTemplate(ctx context.Context, actor *entity.User, id uuid.UUID, req *dto.ClinicalTemplateRequest) (*dto.ClinicalTemplateResponse, error)
	DeleteTemplate(ctx context.Context, actor *entity.User, id uuid.UUID) error
}

type clinicalTemplateUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	templateRepo repository.ClinicalTemplateRepository
	auditService service.AuditService
}

func NewClinicalTemplateUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	templateRepo repository.ClinicalTemplateRepository,
	auditService service.AuditService,
) ClinicalTemplateUsecase {
	return &clinicalTemplateUsecase{
		tx:           tx,
		log:          log,
		templateRepo: templateRepo,
		auditService: auditService,
	}
}

func (u *clinicalTemplateUsecase) ListTemplates(ctx context.Context, actor *entity.User) ([]dto.ClinicalTemplateResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	templates, err := u.templateRepo.FindAll(u.tx.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to list templates: %+v", err)
		return nil, err
	}

	return converter.ClinicalTemplatesToResponses(templates), nil
}

func (u *clinicalTemplateUsecase) GetTemplate(ctx context.Context, actor *entity.User, id uuid.UUID) (*dto.ClinicalTemplateResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	template, err := u.find(u.tx.DB(ctx), id)
	if err != nil {
		return nil, err
	}

	return converter.ClinicalTemplateToResponse(template), nil
}

func (u *clinicalTemplateUsecase) CreateTemplate(ctx context.Context, actor *entity.User, req *dto.ClinicalTemplateRequest) (*dto.ClinicalTemplateResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	template := &entity.ClinicalTemplate{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		CreatedByID:  actor.ID,
		ClinicalNote: converter.ClinicalNoteFromRequest(req.ClinicalNoteRequest),
	}

	if err := u.templateRepo.Create(u.tx.DB(ctx), template); err != nil {
		u.log.Warnf("Failed to create template: %+v", err)
		return nil, err
	}

	return converter.ClinicalTemplateToResponse(template), nil
}

func (u *clinicalTemplateUsecase) UpdateTemplate(ctx context.Context, actor *entity.User, id uuid.UUID, req *dto.ClinicalTemplateRequest) (*dto.ClinicalTemplateResponse, error) {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return nil, ErrUnauthorized
	}

	var template *entity.ClinicalTemplate
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		template, err = u.find(tx, id)
		if err != nil {
			return err
		}

		template.Name = strings.TrimSpace(req.Name)
		template.Description = req.Description
		template.ClinicalNote = converter.ClinicalNoteFromRequest(req.ClinicalNoteRequest)

		if err := u.templateRepo.Update(tx, template); err != nil {
			u.log.Warnf("Failed to update template: %+v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.ClinicalTemplateToResponse(template), nil
}

func (u *clinicalTemplateUsecase) DeleteTemplate(ctx context.Context, actor *entity.User, id uuid.UUID) error {
	if !actor.Can(entity.CapAccessClinicalRecords) {
		return ErrUnauthorized
	}

	return u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		template, err := u.find(tx, id)
		if err != nil {
			return err
		}

		if err := u.templateRepo.Delete(tx, template.ID); err != nil {
			u.log.Warnf("Failed to delete template: %+v", err)
			return err
		}

		return u.auditService.LogDelete(ctx, tx, &actor.ID, entity.AuditActionTemplateDelete,
			"clinical_template", template.ID.String(), map[string]interface{}{"name": template.Name})
	})
}

func (u *clinicalTemplateUsecase) find(db *gorm.DB, id uuid.UUID) (*entity.ClinicalTemplate, error) {
	template, err := u.templateRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find template: %+v", err)
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}
