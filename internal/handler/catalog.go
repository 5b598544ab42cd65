package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"loan4farm-api/internal/service"
)

// CatalogHandler serves the static reference content
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/crops", h.Crops).Methods("GET")
	router.HandleFunc("/schemes", h.Schemes).Methods("GET")
	router.HandleFunc("/features", h.Features).Methods("GET")
	router.HandleFunc("/languages", h.Languages).Methods("GET")
}

func (h *CatalogHandler) Crops(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Crops())
}

func (h *CatalogHandler) Schemes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Schemes())
}

func (h *CatalogHandler) Features(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Features())
}

func (h *CatalogHandler) Languages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Languages())
}
