package handler

import (
	"io"
	"net/http"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/response"
	"telemed-clinic-backend/pkg/validator"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

// CreateCheckoutSession starts (or resumes) the hosted checkout for a consultation
// @Summary Create checkout session
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.CheckoutSessionRequest true "Checkout Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payments/checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutSessionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	session, err := h.paymentUsecase.CreateCheckoutSession(r.Context(), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create checkout session")
		return
	}

	response.Success(w, http.StatusCreated, "Checkout session created successfully", session)
}

// Webhook receives processor events. The body must be read raw for signature verification.
// Processing failures answer 500 so the processor redelivers the event.
// @Summary Payment processor webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.paymentUsecase.HandleWebhook(r.Context(), payload, r.Header.Get(stripeSignatureHeader))
	if err != nil {
		writeUsecaseError(w, err, "Failed to process webhook")
		return
	}

	response.Success(w, http.StatusOK, "Webhook processed", result)
}

// GetDoctorPayments lists payments of the current doctor's consultations
// @Summary List doctor payments
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param skip query int false "Skip"
// @Param limit query int false "Limit (default 100, max 500)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /payments/doctor/payments [get]
func (h *PaymentHandler) GetDoctorPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	payments, err := h.paymentUsecase.ListDoctorPayments(r.Context(), actor, skip, limit)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get payments")
		return
	}

	response.Success(w, http.StatusOK, "Payments retrieved successfully", payments)
}
