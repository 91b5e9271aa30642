package handler

import (
	"net/http"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/response"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
	}
}

// SearchPatients is the administrative patient directory
// @Summary Search patients
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param q query string false "Email or name fragment"
// @Param limit query int false "Limit (default 200, max 500)"
// @Success 200 {object} response.Response
// @Router /admin/patients [get]
func (h *PatientHandler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	patients, err := h.patientUsecase.SearchPatients(r.Context(), actor, &dto.PatientFilterRequest{
		Query: r.URL.Query().Get("q"),
		Limit: limit,
	})
	if err != nil {
		writeUsecaseError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

// GetPatientsWithStats lists patients with their clinical record counts
// @Summary List patients with record stats
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctor/patients [get]
func (h *PatientHandler) GetPatientsWithStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	patients, err := h.patientUsecase.ListPatientsWithStats(r.Context(), actor)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}
