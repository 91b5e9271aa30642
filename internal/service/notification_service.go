package service

import (
	"bytes"
	"context"
	"sync"
	"text/template"
	"time"

	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/infrastructure/metrics"
	"telemed-clinic-backend/internal/infrastructure/notification"

	"github.com/sirupsen/logrus"
)

// NotificationKind selects the email template.
type NotificationKind string

const (
	NotifyConsultationConfirmed NotificationKind = "consultation_confirmed"
	NotifyDoctorNewConsultation NotificationKind = "doctor_new_consultation"
	NotifyPaymentReceived       NotificationKind = "payment_received"
	NotifyStaffWelcome          NotificationKind = "staff_welcome"
)

const notificationTimeout = 15 * time.Second

// NotificationData is the template input. Unused fields are left empty.
type NotificationData struct {
	RecipientName     string
	PatientName       string
	DoctorName        string
	Specialty         string
	ConsultationType  string
	ScheduledAt       string
	RoomURL           string
	Amount            string
	Currency          string
	TemporaryPassword string
	LoginURL          string
	SupportEmail      string
	ClinicName        string
}

// NotificationService dispatches best-effort emails. Notify never blocks on delivery
// and never reports failures to the caller.
type NotificationService interface {
	Notify(kind NotificationKind, recipient string, data NotificationData)
	// Close waits for in-flight deliveries.
	Close()
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var emailTemplates = map[NotificationKind]emailTemplate{
	NotifyConsultationConfirmed: mustEmailTemplate(
		"Your consultation is confirmed",
		`Hello {{.RecipientName}},

Your {{.ConsultationType}} consultation has been confirmed.

Specialty: {{.Specialty}}
Date/Time: {{.ScheduledAt}}
Doctor: {{.DoctorName}}
{{if .RoomURL}}
Video room link:
{{.RoomURL}}
{{end}}
If you have any questions, contact {{.SupportEmail}}.

The {{.ClinicName}} team
`),
	NotifyDoctorNewConsultation: mustEmailTemplate(
		"New consultation scheduled: {{.PatientName}}",
		`Hello {{.RecipientName}},

A new consultation has been scheduled with you.

Patient: {{.PatientName}}
Date/Time: {{.ScheduledAt}}
Type: {{.ConsultationType}}
{{if .RoomURL}}Video room: {{.RoomURL}}
{{end}}
The {{.ClinicName}} team
`),
	NotifyPaymentReceived: mustEmailTemplate(
		"Payment received",
		`Hello {{.RecipientName}},

We received your payment of {{.Amount}} {{.Currency}} for the consultation on {{.ScheduledAt}}.
{{if .RoomURL}}
Video room link:
{{.RoomURL}}
{{end}}
The {{.ClinicName}} team
`),
	NotifyStaffWelcome: mustEmailTemplate(
		"Welcome to {{.ClinicName}}",
		`Hello {{.RecipientName}},

Your account has been created.
{{if .TemporaryPassword}}
Your temporary password is: {{.TemporaryPassword}}

Please sign in and change it immediately.
{{end}}
Sign in at: {{.LoginURL}}

If you have any questions, contact {{.SupportEmail}}.

The {{.ClinicName}} team
`),
}

func mustEmailTemplate(subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

type notificationService struct {
	sender       notification.EmailSender
	log          *logrus.Logger
	metrics      *metrics.ClinicMetrics
	clinicName   string
	supportEmail string
	loginURL     string
	wg           sync.WaitGroup
}

func NewNotificationService(
	sender notification.EmailSender,
	log *logrus.Logger,
	clinicMetrics *metrics.ClinicMetrics,
	clinicName, supportEmail, publicBaseURL string,
) NotificationService {
	return &notificationService{
		sender:       sender,
		log:          log,
		metrics:      clinicMetrics,
		clinicName:   clinicName,
		supportEmail: supportEmail,
		loginURL:     publicBaseURL + "/login",
	}
}

func (s *notificationService) Notify(kind NotificationKind, recipient string, data NotificationData) {
	if recipient == "" {
		return
	}
	tmpl, ok := emailTemplates[kind]
	if !ok {
		s.log.Warnf("Failed to notify %s: unknown notification kind %q", recipient, kind)
		return
	}

	data.ClinicName = s.clinicName
	data.SupportEmail = s.supportEmail
	if data.LoginURL == "" {
		data.LoginURL = s.loginURL
	}

	msg, err := renderEmail(tmpl, recipient, data)
	if err != nil {
		s.log.Warnf("Failed to render %s email: %+v", kind, err)
		s.metrics.ObserveNotification(string(kind), false)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := s.sender.Send(ctx, msg); err != nil {
			s.log.Warnf("Failed to send %s email to %s: %+v", kind, recipient, err)
			s.metrics.ObserveNotification(string(kind), false)
			return
		}
		s.metrics.ObserveNotification(string(kind), true)
	}()
}

func (s *notificationService) Close() {
	s.wg.Wait()
}

func renderEmail(tmpl emailTemplate, recipient string, data NotificationData) (notification.EmailMessage, error) {
	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return notification.EmailMessage{}, err
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return notification.EmailMessage{}, err
	}
	return notification.EmailMessage{
		To:      recipient,
		ToName:  data.RecipientName,
		Subject: subject.String(),
		Body:    body.String(),
	}, nil
}

// ConsultationNotificationData fills the template fields shared by consultation emails.
// Patient and Doctor should be loaded.
func ConsultationNotificationData(c *entity.Consultation) NotificationData {
	data := NotificationData{
		Specialty:        c.Specialty,
		ConsultationType: string(c.ConsultationType),
		ScheduledAt:      c.ScheduledAt.UTC().Format("2006-01-02 15:04 UTC"),
	}
	if c.RoomURL != nil {
		data.RoomURL = *c.RoomURL
	}
	if c.Patient != nil {
		data.PatientName = c.Patient.FullName
	}
	if c.Doctor != nil {
		data.DoctorName = c.Doctor.FullName
	}
	return data
}

// NotifyConsultationParties sends the patient confirmation and the doctor notice.
func NotifyConsultationParties(n NotificationService, c *entity.Consultation) {
	data := ConsultationNotificationData(c)
	if c.Patient != nil {
		patientData := data
		patientData.RecipientName = c.Patient.FullName
		n.Notify(NotifyConsultationConfirmed, c.Patient.Email, patientData)
	}
	if c.Doctor != nil {
		doctorData := data
		doctorData.RecipientName = c.Doctor.FullName
		n.Notify(NotifyDoctorNewConsultation, c.Doctor.Email, doctorData)
	}
}
