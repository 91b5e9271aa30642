package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"telemed-clinic-backend/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(secret string) *StripeCheckoutClient {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewStripeCheckoutClient(config.StripeConfig{
		SecretKey:  secret,
		SuccessURL: "https://clinic.example/payment/success",
		CancelURL:  "https://clinic.example/payment/cancel",
	}, log)
}

func TestCreateCheckoutSession_PostsFormWithMetadata(t *testing.T) {
	var form url.Values
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	client := newTestClient("sk_test_abc").WithBaseURL(srv.URL)
	session, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		AmountCents:   5000,
		Currency:      "EUR",
		ProductName:   "Video consultation",
		CustomerEmail: "a@x.com",
		Metadata: map[string]string{
			"consultation_id": "c-1",
			"payment_id":      "p-1",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "Bearer sk_test_abc", auth)
	assert.Equal(t, "5000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "eur", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "p-1", form.Get("metadata[payment_id]"))
	assert.Empty(t, form.Get("payment_intent_data[metadata][consultation_id]"))
	assert.Equal(t, "https://clinic.example/payment/success", form.Get("success_url"))
	assert.Equal(t, "a@x.com", form.Get("customer_email"))
}

func TestCreateCheckoutSession_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid currency","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient("sk_test_abc").WithBaseURL(srv.URL).
		CreateCheckoutSession(context.Background(), CheckoutParams{AmountCents: 100, Currency: "XXX"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency")
}

func TestCreateCheckoutSession_DryRunSkipsHTTP(t *testing.T) {
	session, err := newTestClient("").WithBaseURL("http://127.0.0.1:1").WithDryRun(true).
		CreateCheckoutSession(context.Background(), CheckoutParams{AmountCents: 5000, Currency: "EUR"})
	require.NoError(t, err)
	assert.Contains(t, session.ID, "cs_dryrun_")
	assert.Contains(t, session.URL, session.ID)
}

func TestCreateCheckoutSession_RequiresSecretKey(t *testing.T) {
	_, err := newTestClient("").CreateCheckoutSession(context.Background(), CheckoutParams{AmountCents: 5000})
	assert.Error(t, err)
}
