package handler

import (
	"net/http"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/response"
	"telemed-clinic-backend/pkg/validator"
)

type StaffHandler struct {
	staffUsecase usecase.StaffUsecase
	validator    *validator.CustomValidator
}

func NewStaffHandler(staffUsecase usecase.StaffUsecase, validator *validator.CustomValidator) *StaffHandler {
	return &StaffHandler{
		staffUsecase: staffUsecase,
		validator:    validator,
	}
}

// GetPublicDoctors lists the doctors patients can book with
// @Summary List doctors
// @Tags Public
// @Produce json
// @Success 200 {object} response.Response
// @Router /public/doctors [get]
func (h *StaffHandler) GetPublicDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.staffUsecase.ListPublicDoctors(r.Context())
	if err != nil {
		writeUsecaseError(w, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// GetMedicalProfessionals lists every medical professional, active or not
// @Summary List medical professionals
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/medical-professionals [get]
func (h *StaffHandler) GetMedicalProfessionals(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	staff, err := h.staffUsecase.ListMedicalProfessionals(r.Context(), actor)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get medical professionals")
		return
	}

	response.Success(w, http.StatusOK, "Medical professionals retrieved successfully", staff)
}

// RegisterStaff creates a staff account
// @Summary Register medical professional
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RegisterStaffRequest true "Staff Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/medical-professionals [post]
func (h *StaffHandler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.RegisterStaffRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	staff, err := h.staffUsecase.RegisterStaff(r.Context(), actor, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to register staff")
		return
	}

	response.Success(w, http.StatusCreated, "Staff registered successfully", staff)
}

// UpdateStaff edits a medical professional
// @Summary Update medical professional
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateStaffRequest true "Update Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/medical-professionals/{id} [patch]
func (h *StaffHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateStaffRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	staff, err := h.staffUsecase.UpdateStaff(r.Context(), actor, id, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff updated successfully", staff)
}
