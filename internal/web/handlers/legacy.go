package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// LegacyHandler serves the unversioned routes the kiosk frontend calls.
// Response bodies keep the shapes that frontend expects.
type LegacyHandler struct {
	service  AttendanceService
	students *StudentsHandler
	log      logrus.FieldLogger
}

// NewLegacyHandler creates a new legacy handler
func NewLegacyHandler(svc AttendanceService, log logrus.FieldLogger) *LegacyHandler {
	return &LegacyHandler{
		service:  svc,
		students: NewStudentsHandler(svc, log),
		log:      log,
	}
}

// legacyStudent is a roster entry as listed by GET /students
type legacyStudent struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

type legacyFrameResponse struct {
	Detected []DetectionResponse `json:"detected"`
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondLegacyError writes the error messages the kiosk frontend displays.
func (h *LegacyHandler) respondLegacyError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	switch {
	case errors.Is(err, attendance.ErrDecode):
		respondError(w, status, "Error. Could not decode the image.")
	case errors.Is(err, attendance.ErrNoFaceFound):
		respondError(w, status, "Error. No face found in the image.")
	case errors.Is(err, attendance.ErrNotFound):
		respondError(w, status, "Student not found")
	default:
		respondServiceError(w, r, h.log, err)
	}
}

// ProcessFrame handles POST /process-frame
func (h *LegacyHandler) ProcessFrame(w http.ResponseWriter, r *http.Request) {
	data, err := readImage(w, r)
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}

	res, err := h.service.ProcessFrame(r.Context(), data)
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}

	detected := detectionsResponse(res)
	for i := range detected {
		detected[i].StudentID = ""
	}
	respondJSON(w, http.StatusOK, legacyFrameResponse{Detected: detected})
}

// AddStudent handles POST /add-student
func (h *LegacyHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	identity, err := h.students.enroll(w, r)
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("Student %s (ID: %s) uploaded successfully!", identity.StudentName, identity.StudentID))
}

// DeleteStudent handles DELETE /students/{id}
func (h *LegacyHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("Student %s removed successfully", id))
}

// StartRegistration handles POST /start-registration
func (h *LegacyHandler) StartRegistration(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.StartSession(r.Context()); err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Registration started.")
}

// ListStudents handles GET /students
func (h *LegacyHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListIdentities(r.Context(), "")
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	out := make([]legacyStudent, 0, len(students))
	for _, s := range students {
		out = append(out, legacyStudent{StudentID: s.StudentID, Name: s.StudentName})
	}
	respondJSON(w, http.StatusOK, out)
}

// ListAttendance handles GET /attendance, which lists student IDs only
func (h *LegacyHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAttendance(r.Context())
	if err != nil {
		h.respondLegacyError(w, r, err)
		return
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.StudentID)
	}
	respondJSON(w, http.StatusOK, ids)
}
