package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/model"
	"loan4farm-api/internal/service"
)

// ProfileHandler serves the logged-in farmer's profile
type ProfileHandler struct {
	profileService *service.ProfileService
	authService    *service.AuthService
	logger         *logrus.Logger
}

func NewProfileHandler(profileService *service.ProfileService, authService *service.AuthService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
		logger:         logger,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.GetProfile).Methods("GET")
	router.HandleFunc("", h.UpdateProfile).Methods("PATCH")
	router.HandleFunc("/logout", h.Logout).Methods("POST")
}

// currentProfile reads the authenticated id; writes 401 when it is missing
func currentProfile(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := ProfileIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return id, ok
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := currentProfile(w, r)
	if !ok {
		return
	}

	p, err := h.profileService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, p.Response())
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := currentProfile(w, r)
	if !ok {
		return
	}

	var input model.UpdateProfileInput
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	p, err := h.profileService.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, p.Response())
}

func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := currentProfile(w, r)
	if !ok {
		return
	}

	if err := h.authService.Logout(r.Context(), id); err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
