package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/model"
	"loan4farm-api/internal/service"
)

// AuthHandler serves the simulated OTP login
type AuthHandler struct {
	authService *service.AuthService
	logger      *logrus.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/otp/send", h.SendOTP).Methods("POST")
	router.HandleFunc("/otp/verify", h.VerifyOTP).Methods("POST")
	router.HandleFunc("/otp/resend", h.ResendOTP).Methods("POST")
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var input model.SendOTPInput
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	resp, err := h.authService.SendOTP(r.Context(), input)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input model.VerifyOTPInput
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	resp, err := h.authService.VerifyOTP(r.Context(), input)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var input model.ResendOTPInput
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	resp, err := h.authService.ResendOTP(r.Context(), input)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
