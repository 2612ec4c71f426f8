package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// maxImageBytes caps uploaded frames and enrollment photos.
const maxImageBytes = 20 << 20

// errMissingImage is returned when a multipart request has no "file" field.
var errMissingImage = errors.New("missing image file")

// AttendanceService is the attendance engine the handlers drive.
type AttendanceService interface {
	StartSession(ctx context.Context) (*attendance.SessionSummary, error)
	ProcessFrame(ctx context.Context, data []byte) (*attendance.FrameResult, error)
	Enroll(ctx context.Context, req attendance.EnrollRequest) (*attendance.Identity, error)
	Remove(ctx context.Context, studentID string) error
	ListIdentities(ctx context.Context, query string) ([]attendance.Identity, error)
	ListAttendance(ctx context.Context) ([]database.AttendanceRecord, error)
	Status() attendance.SessionStatus
	Lookalikes(studentID string, limit int) ([]attendance.Lookalike, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, attendance.ErrDecode),
		errors.Is(err, attendance.ErrInvalidIdentity),
		errors.Is(err, errMissingImage):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrNoFaceFound), errors.Is(err, attendance.ErrInvalidEmbedding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, attendance.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrAlreadyEnrolled):
		return http.StatusConflict
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return http.StatusBadRequest
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the mapped status. Server errors are
// logged and replaced by a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", sanitizeForLog(r.URL.Path)).Error("Request failed")
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// readImage returns the uploaded image: the "file" field of a multipart form,
// otherwise the raw request body.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			return nil, fmt.Errorf("parsing form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errMissingImage
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(data) == 0 {
		return nil, errMissingImage
	}
	return data, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
