package handler

import (
	"net/http"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/response"
	"telemed-clinic-backend/pkg/validator"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

// BookPublic handles anonymous booking from the public site
// @Summary Book a consultation
// @Tags Consultations
// @Accept json
// @Produce json
// @Param request body dto.PublicBookingRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /consultations/public/book [post]
func (h *ConsultationHandler) BookPublic(w http.ResponseWriter, r *http.Request) {
	var req dto.PublicBookingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	consultation, err := h.consultationUsecase.BookPublic(r.Context(), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to book consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation booked successfully", consultation)
}

// CreateConsultation handles bookings made by staff on behalf of a patient
// @Summary Create consultation
// @Tags Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateConsultationRequest true "Consultation Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /consultations [post]
func (h *ConsultationHandler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateConsultationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	consultation, err := h.consultationUsecase.CreateByStaff(r.Context(), actor, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation created successfully", consultation)
}

// GetMyConsultations lists the consultations assigned to the current doctor
// @Summary List my consultations
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /consultations/me [get]
func (h *ConsultationHandler) GetMyConsultations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	consultations, err := h.consultationUsecase.ListMyConsultations(r.Context(), actor, limit)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

// GetConsultation returns one consultation visible to the caller
// @Summary Get consultation
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /consultations/{id} [get]
func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.GetConsultation(r.Context(), actor, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

// GetAllConsultations is the administrative listing with optional filters
// @Summary List consultations
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param day query string false "Day (YYYY-MM-DD, UTC)"
// @Param doctor_id query string false "Doctor ID"
// @Param patient_id query string false "Patient ID"
// @Param status query string false "Status"
// @Param limit query int false "Limit (default 500, max 1000)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/consultations [get]
func (h *ConsultationHandler) GetAllConsultations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := &dto.ConsultationFilterRequest{
		Day:       query.Get("day"),
		DoctorID:  query.Get("doctor_id"),
		PatientID: query.Get("patient_id"),
		Status:    query.Get("status"),
		Limit:     limit,
	}

	consultations, err := h.consultationUsecase.ListConsultations(r.Context(), actor, filter)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

// UpdateConsultation applies a partial update, optionally overriding the status graph
// @Summary Update consultation
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Consultation ID"
// @Param request body dto.UpdateConsultationRequest true "Update Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/consultations/{id} [patch]
func (h *ConsultationHandler) UpdateConsultation(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateConsultationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	consultation, err := h.consultationUsecase.UpdateConsultation(r.Context(), actor, id, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation updated successfully", consultation)
}

// StartVideo moves a confirmed consultation to in_progress and returns the room
// @Summary Start video consultation
// @Tags Video
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/start-video [post]
func (h *ConsultationHandler) StartVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	info, err := h.consultationUsecase.StartVideo(r.Context(), actor, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to start video consultation")
		return
	}

	response.Success(w, http.StatusOK, "Video consultation started", info)
}

// EndVideo completes an in-progress consultation
// @Summary End video consultation
// @Tags Video
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/end-video [post]
func (h *ConsultationHandler) EndVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.EndVideo(r.Context(), actor, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to end video consultation")
		return
	}

	response.Success(w, http.StatusOK, "Video consultation ended", consultation)
}

// GetVideoInfo returns the room of a consultation
// @Summary Get video info
// @Tags Video
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/video-info [get]
func (h *ConsultationHandler) GetVideoInfo(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	info, err := h.consultationUsecase.GetVideoInfo(r.Context(), actor, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get video info")
		return
	}

	response.Success(w, http.StatusOK, "Video info retrieved successfully", info)
}
