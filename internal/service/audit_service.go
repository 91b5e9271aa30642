package service

import (
	"context"

	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService writes audit trail rows inside the caller's transaction, so the
// entry commits or rolls back together with the change it describes.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, newValue interface{}) error {
	return s.record(tx, actorID, action, entityName, entityID, nil, newValue)
}

func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	return s.record(tx, actorID, action, entityName, entityID, oldValue, newValue)
}

func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, oldValue interface{}) error {
	return s.record(tx, actorID, action, entityName, entityID, oldValue, nil)
}

func (s *auditService) record(tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		UserID: actorID,
		Action: action,
		Metadata: entity.JSON{
			"entity":    entityName,
			"entity_id": entityID,
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for %s %s: %+v", action, entityID, err)
		return err
	}
	return nil
}
