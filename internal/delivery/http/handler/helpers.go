package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"telemed-clinic-backend/internal/delivery/http/middleware"
	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/response"
	"telemed-clinic-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into req and runs struct validation,
// writing the 400 response itself when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (*entity.User, bool) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return nil, false
	}
	return user, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns def when the parameter is absent and false when it is not a number.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.Error(w, http.StatusBadRequest, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return n, true
}

// writeUsecaseError maps usecase sentinel errors to HTTP responses.
func writeUsecaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized), errors.Is(err, usecase.ErrNotAuthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrConsultationNotFound),
		errors.Is(err, usecase.ErrPatientNotFound),
		errors.Is(err, usecase.ErrRecordNotFound),
		errors.Is(err, usecase.ErrTemplateNotFound),
		errors.Is(err, usecase.ErrNoMatchingRecords),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrAuditLogNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidReference),
		errors.Is(err, usecase.ErrMissingPatient),
		errors.Is(err, usecase.ErrMissingDoctor),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidTimestamp),
		errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrSamePassword),
		errors.Is(err, usecase.ErrInvalidSignature),
		errors.Is(err, usecase.ErrMalformedPayload):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidState),
		errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrPaymentAlreadyCompleted),
		errors.Is(err, usecase.ErrEmailAlreadyExists),
		errors.Is(err, usecase.ErrLicenseAlreadyExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrPaymentProvider):
		response.BadGateway(w, "Payment provider error")
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, usecase.ErrInactiveUser):
		response.Forbidden(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
