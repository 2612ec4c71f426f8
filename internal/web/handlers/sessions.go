package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// SessionsHandler handles attendance session control
type SessionsHandler struct {
	service AttendanceService
	log     logrus.FieldLogger
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(svc AttendanceService, log logrus.FieldLogger) *SessionsHandler {
	return &SessionsHandler{service: svc, log: log}
}

// Start begins a new session, clearing the attendance of the previous one
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.StartSession(r.Context())
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, summary)
}

// Status returns the counters of the current session
func (h *SessionsHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Status())
}
