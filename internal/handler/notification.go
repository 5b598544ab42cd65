package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"loan4farm-api/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/read", h.MarkAllRead).Methods("POST")
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := currentProfile(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.notifications.List(id))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := currentProfile(w, r)
	if !ok {
		return
	}
	h.notifications.MarkAllRead(id)
	respondJSON(w, http.StatusOK, h.notifications.List(id))
}
