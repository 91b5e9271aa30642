package handler

import (
	"net/http"

	"telemed-clinic-backend/internal/delivery/dto"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/response"
	"telemed-clinic-backend/pkg/validator"
)

// ClinicalHandler serves patient histories, templates and the PDF exports.
type ClinicalHandler struct {
	recordUsecase   usecase.ClinicalRecordUsecase
	templateUsecase usecase.ClinicalTemplateUsecase
	validator       *validator.CustomValidator
}

func NewClinicalHandler(
	recordUsecase usecase.ClinicalRecordUsecase,
	templateUsecase usecase.ClinicalTemplateUsecase,
	validator *validator.CustomValidator,
) *ClinicalHandler {
	return &ClinicalHandler{
		recordUsecase:   recordUsecase,
		templateUsecase: templateUsecase,
		validator:       validator,
	}
}

// @Summary Get patient history
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctor/patients/{id}/history [get]
func (h *ClinicalHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	history, err := h.recordUsecase.GetHistory(r.Context(), actor, patientID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get history")
		return
	}

	response.Success(w, http.StatusOK, "History retrieved successfully", history)
}

// @Summary Add clinical record
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body dto.CreateClinicalRecordRequest true "Record Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctor/patients/{id}/history [post]
func (h *ClinicalHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.CreateClinicalRecordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	record, err := h.recordUsecase.CreateRecord(r.Context(), actor, patientID, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create clinical record")
		return
	}

	response.Success(w, http.StatusCreated, "Clinical record created successfully", record)
}

// @Summary Update clinical record
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param recordId path string true "Record ID"
// @Param request body dto.UpdateClinicalRecordRequest true "Record Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctor/patients/{id}/history/{recordId} [put]
func (h *ClinicalHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	recordID, ok := pathUUID(w, r, "recordId")
	if !ok {
		return
	}

	var req dto.UpdateClinicalRecordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	record, err := h.recordUsecase.UpdateRecord(r.Context(), actor, patientID, recordID, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update clinical record")
		return
	}

	response.Success(w, http.StatusOK, "Clinical record updated successfully", record)
}

// @Summary Delete clinical record
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Param recordId path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctor/patients/{id}/history/{recordId} [delete]
func (h *ClinicalHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	recordID, ok := pathUUID(w, r, "recordId")
	if !ok {
		return
	}

	if err := h.recordUsecase.DeleteRecord(r.Context(), actor, patientID, recordID); err != nil {
		writeUsecaseError(w, err, "Failed to delete clinical record")
		return
	}

	response.Success(w, http.StatusOK, "Clinical record deleted successfully", nil)
}

// @Summary Patient history PDF
// @Tags Documents
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Patient ID"
// @Param complaint query string false "Only records whose chief complaint contains this text"
// @Success 200 {file} file
// @Failure 404 {object} response.Response
// @Router /doctor/patients/{id}/history/pdf [get]
func (h *ClinicalHandler) GetHistoryPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var (
		doc *dto.DocumentResponse
		err error
	)
	if complaint := r.URL.Query().Get("complaint"); complaint != "" {
		doc, err = h.recordUsecase.ComplaintPDF(r.Context(), actor, patientID, complaint)
	} else {
		doc, err = h.recordUsecase.HistoryPDF(r.Context(), actor, patientID)
	}
	if err != nil {
		writeUsecaseError(w, err, "Failed to generate PDF")
		return
	}

	response.File(w, doc.Filename, doc.ContentType, doc.Content)
}

// @Summary Consultation PDF
// @Tags Documents
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Consultation ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Response
// @Router /consultations/{id}/pdf [get]
func (h *ClinicalHandler) GetConsultationPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	consultationID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.recordUsecase.ConsultationPDF(r.Context(), actor, consultationID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to generate PDF")
		return
	}

	response.File(w, doc.Filename, doc.ContentType, doc.Content)
}

// @Summary List templates
// @Tags Templates
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /templates [get]
func (h *ClinicalHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	templates, err := h.templateUsecase.ListTemplates(r.Context(), actor)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get templates")
		return
	}

	response.Success(w, http.StatusOK, "Templates retrieved successfully", templates)
}

// @Summary Get template
// @Tags Templates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /templates/{id} [get]
func (h *ClinicalHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	template, err := h.templateUsecase.GetTemplate(r.Context(), actor, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get template")
		return
	}

	response.Success(w, http.StatusOK, "Template retrieved successfully", template)
}

// @Summary Create template
// @Tags Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ClinicalTemplateRequest true "Template Request"
// @Success 201 {object} response.Response
// @Router /templates [post]
func (h *ClinicalHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.ClinicalTemplateRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	template, err := h.templateUsecase.CreateTemplate(r.Context(), actor, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create template")
		return
	}

	response.Success(w, http.StatusCreated, "Template created successfully", template)
}

// @Summary Update template
// @Tags Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body dto.ClinicalTemplateRequest true "Template Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /templates/{id} [put]
func (h *ClinicalHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ClinicalTemplateRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	template, err := h.templateUsecase.UpdateTemplate(r.Context(), actor, id, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update template")
		return
	}

	response.Success(w, http.StatusOK, "Template updated successfully", template)
}

// @Summary Delete template
// @Tags Templates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /templates/{id} [delete]
func (h *ClinicalHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templateUsecase.DeleteTemplate(r.Context(), actor, id); err != nil {
		writeUsecaseError(w, err, "Failed to delete template")
		return
	}

	response.Success(w, http.StatusOK, "Template deleted successfully", nil)
}
