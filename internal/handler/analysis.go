package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/model"
	"loan4farm-api/internal/service"
)

// AnalysisHandler exposes the risk calculator and the voice assistant
type AnalysisHandler struct {
	analysisService  *service.AnalysisService
	assistantService *service.AssistantService
	logger           *logrus.Logger
}

func NewAnalysisHandler(analysisService *service.AnalysisService, assistantService *service.AssistantService, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService:  analysisService,
		assistantService: assistantService,
		logger:           logger,
	}
}

func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/analysis", h.Analyze).Methods("POST")
	router.HandleFunc("/assistant", h.Assistant).Methods("POST")
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var input model.FarmData
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	result, err := h.analysisService.Analyze(r.Context(), input)
	if err != nil {
		respondServiceError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) Assistant(w http.ResponseWriter, r *http.Request) {
	var input model.AssistantRequest
	if !decodeAndValidate(w, r, &input, h.logger) {
		return
	}

	respondJSON(w, http.StatusOK, h.assistantService.Reply(r.Context(), input.Transcript, input.Language))
}
