package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/service"
	"loan4farm-api/internal/workflow"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse - 400 body with per-field messages
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// decodeAndValidate reads the JSON body into dst and validates it.
// On false the response is already written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *logrus.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WithError(err).Warn("Failed to decode request body")
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := getValidator().Struct(dst); err != nil {
		logger.WithError(err).Debug("Request validation failed")
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "Invalid request. Please check your inputs.",
			Fields: FormatValidationError(err),
		})
		return false
	}
	return true
}

// statusFor maps service errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidIdentifier),
		errors.Is(err, service.ErrUnknownCrop),
		errors.Is(err, service.ErrSignatureRequired),
		errors.Is(err, service.ErrShopRequired),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrOTPExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, service.ErrResendTooEarly):
		return http.StatusConflict
	case service.IsCanceled(err):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// respondServiceError writes the mapped status; internal details stay in the log
func respondServiceError(w http.ResponseWriter, err error, logger *logrus.Logger) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed")
		respondError(w, status, "Internal server error")
		return
	}
	logger.WithError(err).WithField("status", status).Debug("Request rejected")
	respondError(w, status, err.Error())
}
