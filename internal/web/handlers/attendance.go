package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceHandler handles the attendance log
type AttendanceHandler struct {
	service AttendanceService
	log     logrus.FieldLogger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc AttendanceService, log logrus.FieldLogger) *AttendanceHandler {
	return &AttendanceHandler{service: svc, log: log}
}

// AttendanceResponse lists who is present in the current session
type AttendanceResponse struct {
	Present []string         `json:"present"`
	Records []database.AttendanceRecord `json:"records"`
}

// List returns the attendance of the current session
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAttendance(r.Context())
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}

	if records == nil {
		records = []database.AttendanceRecord{}
	}
	resp := AttendanceResponse{
		Present: make([]string, 0, len(records)),
		Records: records,
	}
	for _, rec := range records {
		resp.Present = append(resp.Present, rec.StudentID)
	}
	respondJSON(w, http.StatusOK, resp)
}
