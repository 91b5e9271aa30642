package notification

import (
	"context"
	"fmt"

	"telemed-clinic-backend/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// EmailSender delivers a single rendered email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// SendGridSender sends emails via the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       *logrus.Logger
}

func NewSendGridSender(cfg config.SendGridConfig, log *logrus.Logger) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		log:       log,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, html)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notification: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("notification: sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	s.log.Infof("Email %q sent to %s (status %d)", msg.Subject, msg.To, response.StatusCode)
	return nil
}

// StubEmailSender logs emails instead of sending them. Used when no API key is configured.
type StubEmailSender struct {
	log *logrus.Logger
}

func NewStubEmailSender(log *logrus.Logger) *StubEmailSender {
	return &StubEmailSender{log: log}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Email delivery disabled, skipping send")
	return nil
}

// NewEmailSender picks SendGrid when an API key is configured and the stub otherwise.
func NewEmailSender(cfg config.SendGridConfig, log *logrus.Logger) EmailSender {
	if cfg.APIKey == "" {
		log.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		return NewStubEmailSender(log)
	}
	return NewSendGridSender(cfg, log)
}
