package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"telemed-clinic-backend/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultStripeBaseURL    = "https://api.stripe.com"
	defaultStripeAPIVersion = "2024-12-18.acacia"
)

// CheckoutParams describes a single-item hosted checkout.
type CheckoutParams struct {
	AmountCents   int64
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is the processor-side session created for a payment.
type CheckoutSession struct {
	ID  string
	URL string
}

// StripeCheckoutClient creates Stripe Checkout Sessions over the REST API.
type StripeCheckoutClient struct {
	secretKey  string
	successURL string
	cancelURL  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	log        *logrus.Logger
	dryRun     bool
}

func NewStripeCheckoutClient(cfg config.StripeConfig, log *logrus.Logger) *StripeCheckoutClient {
	return &StripeCheckoutClient{
		secretKey:  cfg.SecretKey,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		baseURL:    defaultStripeBaseURL,
		apiVersion: defaultStripeAPIVersion,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
		dryRun:     cfg.DryRun,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (c *StripeCheckoutClient) WithBaseURL(baseURL string) *StripeCheckoutClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// WithDryRun returns fake sessions without calling Stripe.
func (c *StripeCheckoutClient) WithDryRun(enabled bool) *StripeCheckoutClient {
	c.dryRun = enabled
	return c
}

// CreateCheckoutSession asks Stripe for a hosted checkout page for params.
func (c *StripeCheckoutClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if c.dryRun {
		fakeID := "cs_dryrun_" + uuid.New().String()[:8]
		c.log.Infof("Stripe dry run: skipping checkout session for %d %s", params.AmountCents, params.Currency)
		return &CheckoutSession{
			ID:  fakeID,
			URL: "https://checkout.stripe.com/dry-run/" + fakeID,
		}, nil
	}
	if c.secretKey == "" {
		return nil, fmt.Errorf("payment: stripe secret key not configured")
	}

	successURL := params.SuccessURL
	if successURL == "" {
		successURL = c.successURL
	}
	cancelURL := params.CancelURL
	if cancelURL == "" {
		cancelURL = c.cancelURL
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprintf("%d", params.AmountCents))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("line_items[0][quantity]", "1")
	if successURL != "" {
		form.Set("success_url", successURL)
	}
	if cancelURL != "" {
		form.Set("cancel_url", cancelURL)
	}
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	// Metadata stays on the session; intent events are matched by the stored intent id.
	keys := make([]string, 0, len(params.Metadata))
	for k := range params.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form.Set("metadata["+k+"]", params.Metadata[k])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payment: stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("payment: stripe api status %d: %s", resp.StatusCode, readStripeError(resp.Body))
	}

	var parsed stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payment: stripe decode: %w", err)
	}
	if parsed.ID == "" || parsed.URL == "" {
		return nil, fmt.Errorf("payment: stripe response missing session id or url")
	}

	return &CheckoutSession{ID: parsed.ID, URL: parsed.URL}, nil
}

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func readStripeError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return "unknown error"
	}
	var parsed stripeErrorResponse
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(data)
}
