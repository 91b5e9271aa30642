package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"telemed-clinic-backend/internal/converter"
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"
	"telemed-clinic-backend/internal/infrastructure/database"
	"telemed-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrLicenseAlreadyExists = errors.New("license number already exists")
	ErrInvalidRole          = errors.New("invalid staff role")
)

const (
	temporaryPasswordLength   = 12
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#$%&*"
)

type StaffUsecase interface {
	ListPublicDoctors(ctx context.Context) ([]dto.DoctorPublicResponse, error)
	ListMedicalProfessionals(ctx context.Context, actor *entity.User) ([]dto.UserResponse, error)
	RegisterStaff(ctx context.Context, actor *entity.User, req *dto.RegisterStaffRequest) (*dto.StaffRegistrationResponse, error)
	UpdateStaff(ctx context.Context, actor *entity.User, id uuid.UUID, req *dto.UpdateStaffRequest) (*dto.UserResponse, error)
}

type staffUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	tokenStore   service.TokenStore
	notifier     service.NotificationService
	auditService service.AuditService
}

func NewStaffUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	tokenStore service.TokenStore,
	notifier service.NotificationService,
	auditService service.AuditService,
) StaffUsecase {
	return &staffUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		tokenStore:   tokenStore,
		notifier:     notifier,
		auditService: auditService,
	}
}

func (u *staffUsecase) ListPublicDoctors(ctx context.Context) ([]dto.DoctorPublicResponse, error) {
	doctors, err := u.userRepo.FindMedicalProfessionals(u.tx.DB(ctx), true)
	if err != nil {
		u.log.Warnf("Failed to find medical professionals: %+v", err)
		return nil, err
	}
	return converter.DoctorsToPublicResponses(doctors), nil
}

func (u *staffUsecase) ListMedicalProfessionals(ctx context.Context, actor *entity.User) ([]dto.UserResponse, error) {
	if !actor.Can(entity.CapManageStaff) {
		return nil, ErrUnauthorized
	}

	users, err := u.userRepo.FindMedicalProfessionals(u.tx.DB(ctx), false)
	if err != nil {
		u.log.Warnf("Failed to find medical professionals: %+v", err)
		return nil, err
	}
	return converter.UsersToResponses(users), nil
}

func (u *staffUsecase) RegisterStaff(ctx context.Context, actor *entity.User, req *dto.RegisterStaffRequest) (*dto.StaffRegistrationResponse, error) {
	if !actor.Can(entity.CapManageStaff) {
		return nil, ErrUnauthorized
	}

	role := entity.Role(req.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	password := req.Password
	temporary := password == ""
	if temporary {
		var err error
		password, err = generateTemporaryPassword()
		if err != nil {
			u.log.Warnf("Failed to generate temporary password: %+v", err)
			return nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	isMedical := role == entity.RoleSpecialist
	if req.IsMedicalProfessional != nil {
		isMedical = *req.IsMedicalProfessional
	}

	active := true
	user := &entity.User{
		Email:                 strings.ToLower(strings.TrimSpace(req.Email)),
		Password:              string(hashedPassword),
		FullName:              strings.TrimSpace(req.FullName),
		Role:                  role,
		Specialty:             strings.TrimSpace(req.Specialty),
		LicenseNumber:         normalizeLicense(req.LicenseNumber),
		IsActive:              &active,
		IsMedicalProfessional: isMedical,
		IsFirstLogin:          true,
	}

	err = u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.userRepo.FindByEmail(tx, user.Email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		if user.LicenseNumber != nil {
			existing, err := u.userRepo.FindByLicenseNumber(tx, *user.LicenseNumber)
			if err != nil {
				u.log.Warnf("Failed to find user by license number: %+v", err)
				return err
			}
			if existing != nil {
				return ErrLicenseAlreadyExists
			}
		}

		if err := u.userRepo.Create(tx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			if isDuplicateKeyError(err, "license") {
				return ErrLicenseAlreadyExists
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, &actor.ID, entity.AuditActionStaffCreate, "user", user.ID.String(), staffSnapshot(user))
	})
	if err != nil {
		return nil, err
	}

	data := service.NotificationData{RecipientName: user.FullName}
	if temporary {
		data.TemporaryPassword = password
	}
	u.notifier.Notify(service.NotifyStaffWelcome, user.Email, data)

	u.log.Infof("Staff user %s registered with role %s", user.ID, user.Role)
	return &dto.StaffRegistrationResponse{
		User:                    converter.UserToResponse(user),
		TemporaryPasswordIssued: temporary,
	}, nil
}

func (u *staffUsecase) UpdateStaff(ctx context.Context, actor *entity.User, id uuid.UUID, req *dto.UpdateStaffRequest) (*dto.UserResponse, error) {
	if !actor.Can(entity.CapManageStaff) {
		return nil, ErrUnauthorized
	}

	var user *entity.User
	deactivated := false
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = u.userRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find user by ID: %+v", err)
			return err
		}
		if user == nil || !user.IsMedicalProfessional {
			return ErrUserNotFound
		}

		before := staffSnapshot(user)
		wasActive := user.Active()

		if req.FullName != nil {
			user.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Role != nil {
			role := entity.Role(*req.Role)
			if !role.IsValid() {
				return ErrInvalidRole
			}
			user.Role = role
		}
		if req.Specialty != nil {
			user.Specialty = strings.TrimSpace(*req.Specialty)
		}
		if req.LicenseNumber != nil {
			license := normalizeLicense(req.LicenseNumber)
			if license != nil && (user.LicenseNumber == nil || *user.LicenseNumber != *license) {
				existing, err := u.userRepo.FindByLicenseNumber(tx, *license)
				if err != nil {
					u.log.Warnf("Failed to find user by license number: %+v", err)
					return err
				}
				if existing != nil && existing.ID != user.ID {
					return ErrLicenseAlreadyExists
				}
			}
			user.LicenseNumber = license
		}
		if req.IsActive != nil {
			active := *req.IsActive
			user.IsActive = &active
		}
		deactivated = wasActive && !user.Active()

		if err := u.userRepo.Update(tx, user); err != nil {
			if isDuplicateKeyError(err, "license") {
				return ErrLicenseAlreadyExists
			}
			u.log.Warnf("Failed to update user: %+v", err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionStaffUpdate, "user", user.ID.String(), before, staffSnapshot(user))
	})
	if err != nil {
		return nil, err
	}

	if deactivated {
		if err := u.tokenStore.RevokeAll(ctx, user.ID); err != nil {
			u.log.Warnf("Failed to revoke tokens of deactivated user %s: %+v", user.ID, err)
		}
	}

	return converter.UserToResponse(user), nil
}

func normalizeLicense(license *string) *string {
	if license == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*license)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func staffSnapshot(user *entity.User) map[string]interface{} {
	snapshot := map[string]interface{}{
		"email":                   user.Email,
		"full_name":               user.FullName,
		"role":                    string(user.Role),
		"specialty":               user.Specialty,
		"is_active":               user.Active(),
		"is_medical_professional": user.IsMedicalProfessional,
	}
	if user.LicenseNumber != nil {
		snapshot["license_number"] = *user.LicenseNumber
	}
	return snapshot
}

func generateTemporaryPassword() (string, error) {
	max := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	buf := make([]byte, temporaryPasswordLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = temporaryPasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
