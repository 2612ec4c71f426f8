package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// FramesHandler handles camera frame processing
type FramesHandler struct {
	service AttendanceService
	log     logrus.FieldLogger
}

// NewFramesHandler creates a new frames handler
func NewFramesHandler(svc AttendanceService, log logrus.FieldLogger) *FramesHandler {
	return &FramesHandler{service: svc, log: log}
}

// DetectionResponse is one resolved face of a frame
type DetectionResponse struct {
	StudentID   string                `json:"student_id,omitempty"`
	Name        string                `json:"name"`
	Distance    *float64              `json:"distance"`
	BoundingBox facematch.BoundingBox `json:"bounding_box"`
}

// FrameResponse is the result of processing a frame
type FrameResponse struct {
	SessionID string              `json:"session_id"`
	Detected  []DetectionResponse `json:"detected"`
}

func detectionsResponse(res *attendance.FrameResult) []DetectionResponse {
	out := make([]DetectionResponse, 0, len(res.Detections))
	for _, d := range res.Detections {
		out = append(out, DetectionResponse{
			StudentID:   d.IdentityID,
			Name:        d.Name,
			Distance:    d.Distance,
			BoundingBox: d.Box,
		})
	}
	return out
}

// Process resolves the faces of one frame and records attendance
func (h *FramesHandler) Process(w http.ResponseWriter, r *http.Request) {
	data, err := readImage(w, r)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}

	res, err := h.service.ProcessFrame(r.Context(), data)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, FrameResponse{
		SessionID: res.SessionID,
		Detected:  detectionsResponse(res),
	})
}
