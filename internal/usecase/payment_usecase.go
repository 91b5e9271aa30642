package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telemed-clinic-backend/config"
	"telemed-clinic-backend/internal/converter"
	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/domain/repository"
	"telemed-clinic-backend/internal/infrastructure/database"
	"telemed-clinic-backend/internal/infrastructure/metrics"
	processor "telemed-clinic-backend/internal/infrastructure/payment"
	"telemed-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPaymentProvider         = errors.New("payment provider error")
	ErrPaymentAlreadyCompleted = errors.New("payment for this consultation is already completed")
	ErrInvalidSignature        = processor.ErrInvalidSignature
	ErrMalformedPayload        = processor.ErrMalformedPayload
)

const (
	defaultPaymentPageSize = 100
	maxPaymentPageSize     = 500
)

// Webhook outcomes reported back to the processor and counted in metrics.
const (
	WebhookOutcomeApplied   = "applied"
	WebhookOutcomeNoOp      = "no_op"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeFailed    = "failed"
)

// CheckoutProvider creates hosted checkout sessions at the payment processor.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params processor.CheckoutParams) (*processor.CheckoutSession, error)
}

// WebhookVerifier authenticates and decodes processor webhook deliveries.
type WebhookVerifier interface {
	ParseEvent(payload []byte, header string) (*processor.Event, error)
}

type PaymentUsecase interface {
	CreateCheckoutSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error)
	ListDoctorPayments(ctx context.Context, actor *entity.User, skip, limit int) (*dto.PaymentListResponse, error)
}

type paymentUsecase struct {
	tx               database.Transactor
	log              *logrus.Logger
	paymentRepo      repository.PaymentRepository
	consultationRepo repository.ConsultationRepository
	patientRepo      repository.PatientRepository
	userRepo         repository.UserRepository
	checkout         CheckoutProvider
	verifier         WebhookVerifier
	eventTracker     service.WebhookEventTracker
	notifier         service.NotificationService
	metrics          *metrics.ClinicMetrics
	clinic           config.ClinicConfig
	now              func() time.Time
}

// NewPaymentUsecase builds the reconciler. eventTracker may be nil, in which case
// duplicate deliveries are absorbed by the conditional status updates alone.
func NewPaymentUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	paymentRepo repository.PaymentRepository,
	consultationRepo repository.ConsultationRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	checkout CheckoutProvider,
	verifier WebhookVerifier,
	eventTracker service.WebhookEventTracker,
	notifier service.NotificationService,
	clinicMetrics *metrics.ClinicMetrics,
	clinic config.ClinicConfig,
) PaymentUsecase {
	return &paymentUsecase{
		tx:               tx,
		log:              log,
		paymentRepo:      paymentRepo,
		consultationRepo: consultationRepo,
		patientRepo:      patientRepo,
		userRepo:         userRepo,
		checkout:         checkout,
		verifier:         verifier,
		eventTracker:     eventTracker,
		notifier:         notifier,
		metrics:          clinicMetrics,
		clinic:           clinic,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (u *paymentUsecase) CreateCheckoutSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	var (
		payment      *entity.Payment
		consultation *entity.Consultation
	)
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		consultation, err = u.consultationRepo.FindByID(tx, req.ConsultationID)
		if err != nil {
			u.log.Warnf("Failed to find consultation by ID: %+v", err)
			return err
		}
		if consultation == nil {
			return ErrConsultationNotFound
		}
		if consultation.Status.IsTerminal() {
			return ErrInvalidState
		}

		payment, err = u.paymentRepo.FindOrCreateForConsultation(tx, &entity.Payment{
			ConsultationID: consultation.ID,
			Amount:         u.clinic.DefaultFee,
			Currency:       u.clinic.Currency,
			Status:         entity.PaymentStatusPending,
		})
		if err != nil {
			u.log.Warnf("Failed to find or create payment: %+v", err)
			return err
		}
		if payment.IsCompleted() {
			return ErrPaymentAlreadyCompleted
		}

		consultation.Patient, err = u.patientRepo.FindByID(tx, consultation.PatientID)
		if err != nil {
			u.log.Warnf("Failed to find patient by ID: %+v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The processor call stays outside the transaction; on failure the payment remains pending.
	params := processor.CheckoutParams{
		AmountCents: payment.AmountInMinorUnits(),
		Currency:    payment.Currency,
		ProductName: checkoutProductName(consultation),
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata: map[string]string{
			"consultation_id": consultation.ID.String(),
			"payment_id":      payment.ID.String(),
		},
	}
	if consultation.Patient != nil {
		params.CustomerEmail = consultation.Patient.Email
	}

	session, err := u.checkout.CreateCheckoutSession(ctx, params)
	if err != nil {
		u.log.Warnf("Failed to create checkout session: %+v", err)
		u.metrics.ObserveCheckout("failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if err := u.paymentRepo.SetSessionID(u.tx.DB(ctx), payment.ID, session.ID); err != nil {
		u.log.Warnf("Failed to store checkout session id: %+v", err)
		return nil, err
	}
	u.metrics.ObserveCheckout("created")

	u.log.Infof("Checkout session %s created for payment %s", session.ID, payment.ID)
	return &dto.CheckoutSessionResponse{
		PaymentID:   payment.ID,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Status:      string(payment.Status),
	}, nil
}

func checkoutProductName(c *entity.Consultation) string {
	name := "Video consultation"
	if c.ConsultationType != entity.ConsultationTypeVideo {
		name = "Consultation"
	}
	if specialty := strings.TrimSpace(c.Specialty); specialty != "" {
		name += " - " + specialty
	}
	return name
}

// HandleWebhook verifies and applies one processor event. Every branch is idempotent:
// payments and consultations only move through conditional updates, so replays and
// concurrent deliveries converge on the same state. Event ids are recorded only after
// their effects commit.
func (u *paymentUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	event, err := u.verifier.ParseEvent(payload, signature)
	if err != nil {
		u.log.Warnf("Rejected webhook delivery: %+v", err)
		u.metrics.ObserveWebhook("unknown", "rejected")
		return nil, err
	}

	if event.Kind == processor.EventIgnored {
		u.metrics.ObserveWebhook(string(event.Kind), WebhookOutcomeIgnored)
		return &dto.WebhookResponse{Received: true, EventID: event.ID, Outcome: WebhookOutcomeIgnored}, nil
	}

	if u.eventTracker != nil && event.ID != "" {
		seen, err := u.eventTracker.Processed(ctx, event.ID)
		if err != nil {
			u.log.Warnf("Failed to check webhook event %s: %+v", event.ID, err)
		} else if seen {
			u.metrics.ObserveWebhook(string(event.Kind), WebhookOutcomeDuplicate)
			return &dto.WebhookResponse{Received: true, EventID: event.ID, Outcome: WebhookOutcomeDuplicate}, nil
		}
	}

	var outcome string
	switch event.Kind {
	case processor.EventCheckoutCompleted:
		outcome, err = u.applyCheckoutCompleted(ctx, event)
	case processor.EventPaymentIntentFailed:
		outcome, err = u.applyPaymentFailed(ctx, event)
	case processor.EventPaymentIntentSucceeded:
		// Settlement is driven by checkout completion.
		u.log.Infof("Payment intent %s succeeded", event.PaymentIntentID)
		outcome = WebhookOutcomeNoOp
	}
	if err != nil {
		u.metrics.ObserveWebhook(string(event.Kind), WebhookOutcomeFailed)
		return nil, err
	}

	if u.eventTracker != nil && event.ID != "" {
		if err := u.eventTracker.MarkProcessed(ctx, event.ID); err != nil {
			u.log.Warnf("Failed to record webhook event %s: %+v", event.ID, err)
		}
	}

	u.metrics.ObserveWebhook(string(event.Kind), outcome)
	return &dto.WebhookResponse{Received: true, EventID: event.ID, Outcome: outcome}, nil
}

func (u *paymentUsecase) applyCheckoutCompleted(ctx context.Context, event *processor.Event) (string, error) {
	paymentID, ok := metadataUUID(event.Metadata, "payment_id")
	if !ok {
		u.log.Warnf("Checkout event %s carries no payment id", event.ID)
		return WebhookOutcomeNoOp, nil
	}

	var (
		consultation *entity.Consultation
		payment      *entity.Payment
		confirmed    bool
	)
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		payment, err = u.paymentRepo.FindByID(tx, paymentID)
		if err != nil {
			u.log.Warnf("Failed to find payment by ID: %+v", err)
			return err
		}
		if payment == nil {
			return nil
		}

		rows, err := u.paymentRepo.MarkCompleted(tx, payment.ID,
			optionalString(event.PaymentIntentID), optionalString(event.CustomerID), u.now())
		if err != nil {
			u.log.Warnf("Failed to mark payment completed: %+v", err)
			return err
		}
		if rows == 0 {
			payment = nil
			return nil
		}

		consultation, confirmed, err = u.cascadeConsultation(tx, payment.ConsultationID, entity.ConsultationStatusConfirmed)
		return err
	})
	if err != nil {
		return "", err
	}
	if payment == nil {
		return WebhookOutcomeNoOp, nil
	}

	u.log.Infof("Payment %s completed", payment.ID)
	if consultation != nil {
		if confirmed {
			service.NotifyConsultationParties(u.notifier, consultation)
		} else {
			u.log.Warnf("Payment %s completed but consultation %s is %s", payment.ID, consultation.ID, consultation.Status)
		}
		if consultation.Patient != nil {
			data := service.ConsultationNotificationData(consultation)
			data.RecipientName = consultation.Patient.FullName
			data.Amount = payment.Amount.StringFixed(2)
			data.Currency = payment.Currency
			u.notifier.Notify(service.NotifyPaymentReceived, consultation.Patient.Email, data)
		}
	}
	return WebhookOutcomeApplied, nil
}

func (u *paymentUsecase) applyPaymentFailed(ctx context.Context, event *processor.Event) (string, error) {
	applied := false
	err := u.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		payment, err := u.findPaymentForIntent(tx, event)
		if err != nil {
			return err
		}
		if payment == nil {
			return nil
		}

		rows, err := u.paymentRepo.MarkFailed(tx, payment.ID, optionalString(event.PaymentIntentID))
		if err != nil {
			u.log.Warnf("Failed to mark payment failed: %+v", err)
			return err
		}
		if rows == 0 {
			return nil
		}
		applied = true

		_, _, err = u.cascadeConsultation(tx, payment.ConsultationID, entity.ConsultationStatusCancelled)
		return err
	})
	if err != nil {
		return "", err
	}
	if !applied {
		return WebhookOutcomeNoOp, nil
	}

	u.log.Infof("Payment for intent %s failed", event.PaymentIntentID)
	return WebhookOutcomeApplied, nil
}

// findPaymentForIntent resolves the payment by processor intent id. The id is only
// stored when a checkout completes, so declines inside a still-open session never match.
func (u *paymentUsecase) findPaymentForIntent(tx *gorm.DB, event *processor.Event) (*entity.Payment, error) {
	if event.PaymentIntentID == "" {
		return nil, nil
	}
	payment, err := u.paymentRepo.FindByPaymentIntentID(tx, event.PaymentIntentID)
	if err != nil {
		u.log.Warnf("Failed to find payment by intent ID: %+v", err)
		return nil, err
	}
	return payment, nil
}

// cascadeConsultation moves the consultation to status when the lifecycle graph allows
// it and loads the parties for notifications. Terminal or already advanced
// consultations are left alone. landed reports whether the consultation is now in status.
func (u *paymentUsecase) cascadeConsultation(tx *gorm.DB, id uuid.UUID, status entity.ConsultationStatus) (consultation *entity.Consultation, landed bool, err error) {
	consultation, err = u.consultationRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find consultation by ID: %+v", err)
		return nil, false, err
	}
	if consultation == nil {
		return nil, false, nil
	}

	from := consultation.Status
	landed = from == status
	if from != status && from.CanTransitionTo(status) {
		if err := consultation.TransitionTo(status, u.now()); err != nil {
			return nil, false, err
		}
		rows, err := u.consultationRepo.UpdateStatus(tx, consultation, from)
		if err != nil {
			u.log.Warnf("Failed to update consultation status: %+v", err)
			return nil, false, err
		}
		if rows == 0 {
			u.log.Warnf("Consultation %s changed concurrently, skipping %s cascade", id, status)
			consultation.Status = from
		} else {
			landed = true
		}
	} else if from != status {
		u.log.Infof("Consultation %s is %s, skipping %s cascade", id, from, status)
	}

	consultation.Patient, err = u.patientRepo.FindByID(tx, consultation.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient by ID: %+v", err)
		return nil, false, err
	}
	consultation.Doctor, err = u.userRepo.FindByID(tx, consultation.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by ID: %+v", err)
		return nil, false, err
	}
	return consultation, landed, nil
}

func (u *paymentUsecase) ListDoctorPayments(ctx context.Context, actor *entity.User, skip, limit int) (*dto.PaymentListResponse, error) {
	if !actor.IsMedicalProfessional {
		return nil, ErrUnauthorized
	}
	if skip < 0 {
		skip = 0
	}
	limit = clampLimit(limit, defaultPaymentPageSize, maxPaymentPageSize)

	payments, err := u.paymentRepo.FindByDoctorID(u.tx.DB(ctx), actor.ID, skip, limit)
	if err != nil {
		u.log.Warnf("Failed to find payments for doctor: %+v", err)
		return nil, err
	}

	return &dto.PaymentListResponse{
		Payments: converter.PaymentsToResponses(payments),
		Skip:     skip,
		Limit:    limit,
	}, nil
}

func metadataUUID(metadata map[string]string, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(metadata[key]))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
