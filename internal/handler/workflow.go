package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/model"
	"loan4farm-api/internal/service"
)

// WorkflowHandler drives the loan wizard and emergency relief sessions
type WorkflowHandler struct {
	workflows *service.LoanWorkflowService
	logger    *logrus.Logger
}

func NewWorkflowHandler(workflows *service.LoanWorkflowService, logger *logrus.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows, logger: logger}
}

func (h *WorkflowHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/loan", h.StartLoan).Methods("POST")
	router.HandleFunc("/emergency", h.StartEmergency).Methods("POST")
	router.HandleFunc("/{id}", h.Get).Methods("GET")
	router.HandleFunc("/{id}/events", h.Fire).Methods("POST")
}

func (h *WorkflowHandler) StartLoan(w http.ResponseWriter, r *http.Request) {
	profileID, ok := currentProfile(w, r)
	if !ok {
		return
	}

	var input model.StartLoanInput
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	s, err := h.workflows.StartLoan(r.Context(), profileID, input.Amount)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

func (h *WorkflowHandler) StartEmergency(w http.ResponseWriter, r *http.Request) {
	profileID, ok := currentProfile(w, r)
	if !ok {
		return
	}

	s, err := h.workflows.StartEmergency(r.Context(), profileID)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := currentProfile(w, r)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r)
	if !ok {
		return
	}

	s, err := h.workflows.Get(r.Context(), profileID, sessionID)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *WorkflowHandler) Fire(w http.ResponseWriter, r *http.Request) {
	profileID, ok := currentProfile(w, r)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r)
	if !ok {
		return
	}

	var input model.WorkflowEventInput
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	s, err := h.workflows.Fire(r.Context(), profileID, sessionID, input)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func sessionIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid workflow id")
		return uuid.Nil, false
	}
	return id, true
}
