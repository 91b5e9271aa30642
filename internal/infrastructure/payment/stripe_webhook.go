package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// EventKind is the processor-neutral classification of a webhook event.
type EventKind string

const (
	EventCheckoutCompleted      EventKind = "checkout_completed"
	EventPaymentIntentSucceeded EventKind = "payment_intent_succeeded"
	EventPaymentIntentFailed    EventKind = "payment_intent_failed"
	EventIgnored                EventKind = "ignored"
)

var stripeEventKinds = map[string]EventKind{
	"checkout.session.completed":    EventCheckoutCompleted,
	"payment_intent.succeeded":      EventPaymentIntentSucceeded,
	"payment_intent.payment_failed": EventPaymentIntentFailed,
}

// Event is a verified settlement notification.
type Event struct {
	ID              string
	Type            string
	Kind            EventKind
	SessionID       string
	PaymentIntentID string
	CustomerID      string
	Metadata        map[string]string
}

const defaultSignatureTolerance = 5 * time.Minute

// StripeWebhookVerifier checks the Stripe-Signature header and decodes the event.
type StripeWebhookVerifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{
		secret:    secret,
		tolerance: defaultSignatureTolerance,
		now:       time.Now,
	}
}

// ParseEvent verifies the signature over the raw payload before decoding it.
// An unset secret rejects every delivery.
func (v *StripeWebhookVerifier) ParseEvent(payload []byte, header string) (*Event, error) {
	if !v.verify(payload, header) {
		return nil, ErrInvalidSignature
	}

	var raw stripeEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw.ID == "" || raw.Type == "" {
		return nil, fmt.Errorf("%w: missing event id or type", ErrMalformedPayload)
	}

	kind, ok := stripeEventKinds[raw.Type]
	if !ok {
		kind = EventIgnored
	}

	event := &Event{
		ID:         raw.ID,
		Type:       raw.Type,
		Kind:       kind,
		CustomerID: expandableID(raw.Data.Object.Customer),
		Metadata:   raw.Data.Object.Metadata,
	}
	if event.Metadata == nil {
		event.Metadata = map[string]string{}
	}

	switch kind {
	case EventCheckoutCompleted:
		event.SessionID = raw.Data.Object.ID
		event.PaymentIntentID = expandableID(raw.Data.Object.PaymentIntent)
	case EventPaymentIntentSucceeded, EventPaymentIntentFailed:
		event.PaymentIntentID = raw.Data.Object.ID
	}

	return event, nil
}

func (v *StripeWebhookVerifier) verify(payload []byte, header string) bool {
	if v.secret == "" || header == "" {
		return false
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return false
	}

	expected := Sign(v.secret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return true
		}
	}
	return false
}

// Sign computes the v1 signature Stripe sends for payload at timestamp.
func Sign(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent json.RawMessage   `json:"payment_intent"`
			Customer      json.RawMessage   `json:"customer"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// expandableID reads a Stripe field that is either an id string or an expanded object.
func expandableID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}
