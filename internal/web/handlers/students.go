package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

const (
	defaultLookalikeLimit = 5
	maxLookalikeLimit     = 50
)

// StudentsHandler handles enrollment and the student roster
type StudentsHandler struct {
	service AttendanceService
	log     logrus.FieldLogger
}

// NewStudentsHandler creates a new students handler
func NewStudentsHandler(svc AttendanceService, log logrus.FieldLogger) *StudentsHandler {
	return &StudentsHandler{service: svc, log: log}
}

// List returns enrolled students, filtered by the optional q parameter
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListIdentities(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, students)
}

// enroll reads the multipart enrollment form and enrolls the student.
func (h *StudentsHandler) enroll(w http.ResponseWriter, r *http.Request) (*attendance.Identity, error) {
	data, err := readImage(w, r)
	if err != nil {
		return nil, err
	}
	return h.service.Enroll(r.Context(), attendance.EnrollRequest{
		StudentID:   r.FormValue("student_id"),
		StudentName: r.FormValue("student_name"),
		Image:       data,
	})
}

// Create enrolls a student from a multipart form with student_id, student_name and file
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := h.enroll(w, r)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, identity)
}

// Delete removes an enrolled student
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lookalikes returns the students of the current session closest to the given one
func (h *StudentsHandler) Lookalikes(w http.ResponseWriter, r *http.Request) {
	limit := defaultLookalikeLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLookalikeLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxLookalikeLimit))
			return
		}
		limit = n
	}

	lookalikes, err := h.service.Lookalikes(chi.URLParam(r, "id"), limit)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, lookalikes)
}
