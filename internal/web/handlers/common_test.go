package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/logging"
)

func TestRespondJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusCreated, map[string]int{"count": 2})

	assertStatusCode(t, recorder, http.StatusCreated)
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got '%s'", ct)
	}
	if recorder.Body.String() != "{\"count\":2}\n" {
		t.Errorf("unexpected body %q", recorder.Body.String())
	}
}

func TestRespondJSON_NilData(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusOK, nil)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"decode", fmt.Errorf("x: %w", attendance.ErrDecode), http.StatusBadRequest},
		{"invalid identity", attendance.ErrInvalidIdentity, http.StatusBadRequest},
		{"missing image", errMissingImage, http.StatusBadRequest},
		{"no face", attendance.ErrNoFaceFound, http.StatusUnprocessableEntity},
		{"bad embedding", attendance.ErrInvalidEmbedding, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("%w: S1", attendance.ErrNotFound), http.StatusNotFound},
		{"already enrolled", attendance.ErrAlreadyEnrolled, http.StatusConflict},
		{"too large", &http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusForError(tc.err); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRespondServiceError_HidesInternalErrors(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)

	respondServiceError(recorder, req, logging.Discard(), errors.New("pq: password authentication failed"))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "internal server error")
}

func TestReadImage(t *testing.T) {
	img := pngBytes(t)

	t.Run("multipart", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/", nil, img)
		data, err := readImage(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(data, img) {
			t.Error("expected file content")
		}
	})

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(img))
		req.Header.Set("Content-Type", "image/png")
		data, err := readImage(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(data, img) {
			t.Error("expected body content")
		}
	})

	t.Run("multipart without file", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/", map[string]string{"x": "y"}, nil)
		if _, err := readImage(httptest.NewRecorder(), req); !errors.Is(err, errMissingImage) {
			t.Errorf("expected errMissingImage, got %v", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if _, err := readImage(httptest.NewRecorder(), req); !errors.Is(err, errMissingImage) {
			t.Errorf("expected errMissingImage, got %v", err)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var body map[string]string
	parseJSONResponse(t, recorder, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}
