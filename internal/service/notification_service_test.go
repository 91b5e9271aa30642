package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/infrastructure/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg notification.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []notification.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.EmailMessage(nil), s.sent...)
}

func TestNotificationService_RendersAndSends(t *testing.T) {
	log, _ := test.NewNullLogger()
	sender := &recordingSender{}
	svc := NewNotificationService(sender, log, nil, "Telemedicine Clinic", "support@clinic.example", "https://clinic.example")

	svc.Notify(NotifyConsultationConfirmed, "a@x.com", NotificationData{
		RecipientName:    "Ana",
		Specialty:        "Cardiology",
		ConsultationType: "video",
		ScheduledAt:      "2025-01-10 09:00 UTC",
		RoomURL:          "https://meet.jit.si/Telemed_x_deadbeef",
	})
	svc.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "a@x.com", msgs[0].To)
	assert.Equal(t, "Your consultation is confirmed", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "Hello Ana")
	assert.Contains(t, msgs[0].Body, "https://meet.jit.si/Telemed_x_deadbeef")
	assert.Contains(t, msgs[0].Body, "support@clinic.example")
}

func TestNotificationService_FailuresAreSwallowed(t *testing.T) {
	log, hook := test.NewNullLogger()
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewNotificationService(sender, log, nil, "Clinic", "support@clinic.example", "")

	assert.NotPanics(t, func() {
		svc.Notify(NotifyPaymentReceived, "a@x.com", NotificationData{Amount: "50.00", Currency: "EUR"})
		svc.Close()
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestNotificationService_SkipsEmptyRecipient(t *testing.T) {
	log, _ := test.NewNullLogger()
	sender := &recordingSender{}
	svc := NewNotificationService(sender, log, nil, "Clinic", "", "")

	svc.Notify(NotifyStaffWelcome, "", NotificationData{})
	svc.Close()
	assert.Empty(t, sender.messages())
}

func TestNotifyConsultationParties(t *testing.T) {
	log, _ := test.NewNullLogger()
	sender := &recordingSender{}
	svc := NewNotificationService(sender, log, nil, "Clinic", "", "")

	room := "https://meet.jit.si/room"
	c := &entity.Consultation{
		ID:               uuid.New(),
		ConsultationType: entity.ConsultationTypeVideo,
		ScheduledAt:      time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		RoomURL:          &room,
		Patient:          &entity.Patient{FullName: "Ana", Email: "a@x.com"},
		Doctor:           &entity.User{FullName: "Dr. House", Email: "house@clinic.example"},
	}
	NotifyConsultationParties(svc, c)
	svc.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	recipients := []string{msgs[0].To, msgs[1].To}
	assert.ElementsMatch(t, []string{"a@x.com", "house@clinic.example"}, recipients)
	for _, m := range msgs {
		if m.To == "house@clinic.example" {
			assert.Equal(t, "New consultation scheduled: Ana", m.Subject)
			assert.Contains(t, m.Body, "2025-01-10 09:00 UTC")
		}
	}
}
