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

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

const (
	defaultAuditLogLimit = 100
	maxAuditLogLimit     = 1000
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, actor *entity.User, action string, limit int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, actor *entity.User, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		tx:           tx,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, actor *entity.User, action string, limit int) (*dto.AuditLogListResponse, error) {
	if !actor.Can(entity.CapViewAuditLogs) {
		return nil, ErrUnauthorized
	}

	logs, err := u.auditLogRepo.FindAll(u.tx.DB(ctx), strings.TrimSpace(action), clampLimit(limit, defaultAuditLogLimit, maxAuditLogLimit))
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, actor *entity.User, id int64) (*dto.AuditLogResponse, error) {
	if !actor.Can(entity.CapViewAuditLogs) {
		return nil, ErrUnauthorized
	}

	auditLog, err := u.auditLogRepo.FindByID(u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
