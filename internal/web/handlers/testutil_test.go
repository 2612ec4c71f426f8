package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/logging"
)

const testDim = 4

// stubDetector always returns the same faces
type stubDetector struct {
	mu    sync.Mutex
	faces []facematch.Detection
	err   error
}

func (d *stubDetector) DetectAndEmbed(ctx context.Context, img image.Image) ([]facematch.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	out := make([]facematch.Detection, len(d.faces))
	copy(out, d.faces)
	return out, nil
}

func (d *stubDetector) returns(faces ...facematch.Detection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faces = faces
}

func axis(i int) []float64 {
	v := make([]float64, testDim)
	v[i] = 1
	return v
}

func face(emb []float64) facematch.Detection {
	return facematch.Detection{Box: facematch.BoundingBox{Top: 1, Right: 2, Bottom: 3, Left: 4}, Embedding: emb}
}

// testEnv is an attendance service over in-memory stores
type testEnv struct {
	service    *attendance.Service
	identities *mock.MockIdentityStore
	attendance *mock.MockAttendanceStore
	detector   *stubDetector
}

func newTestEnv(t *testing.T, enrolled ...database.StoredIdentity) *testEnv {
	t.Helper()
	ids := mock.NewMockIdentityStore()
	for _, e := range enrolled {
		ids.AddIdentity(e)
	}
	att := mock.NewMockAttendanceStore()
	det := &stubDetector{}
	policy := attendance.Policy{Tolerance: 0.55, FrameThreshold: 2, Downscale: 0.25, EmbeddingDim: testDim}

	return &testEnv{
		service:    attendance.NewService(ids, att, det, policy, logging.Discard()),
		identities: ids,
		attendance: att,
		detector:   det,
	}
}

func (e *testEnv) startSession(t *testing.T) {
	t.Helper()
	if _, err := e.service.StartSession(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
}

func student(id, name string, emb []float64) database.StoredIdentity {
	return database.StoredIdentity{StudentID: id, StudentName: name, Encoding: database.EncodeEmbedding(emb)}
}

// pngBytes returns a small valid PNG image
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range 16 {
		img.Set(i, i, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a multipart form request with optional file content
func multipartRequest(t *testing.T, method, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("file", "photo.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(file)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
