package attendance

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/logging"
)

const testDim = 4

// stubDetector returns queued detections one call at a time, then the fallback.
type stubDetector struct {
	mu       sync.Mutex
	queue    [][]facematch.Detection
	fallback []facematch.Detection
	err      error
	calls    int
	lastSize image.Point
}

func (d *stubDetector) DetectAndEmbed(ctx context.Context, img image.Image) ([]facematch.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.lastSize = img.Bounds().Size()
	if d.err != nil {
		return nil, d.err
	}
	next := d.fallback
	if len(d.queue) > 0 {
		next = d.queue[0]
		d.queue = d.queue[1:]
	}
	out := make([]facematch.Detection, len(next))
	copy(out, next)
	return out, nil
}

func (d *stubDetector) returns(detections ...facematch.Detection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = detections
}

func (d *stubDetector) enqueue(detections ...facematch.Detection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, detections)
}

// unit returns a testDim vector with scale on axis i.
func unit(i int, scale float64) []float64 {
	v := make([]float64, testDim)
	v[i] = scale
	return v
}

// shifted returns a copy of v moved by delta along the last axis.
func shifted(v []float64, delta float64) []float64 {
	out := append([]float64(nil), v...)
	out[len(out)-1] += delta
	return out
}

func face(emb []float64) facematch.Detection {
	return facematch.Detection{
		Box:       facematch.BoundingBox{Top: 10, Right: 20, Bottom: 30, Left: 5},
		Embedding: emb,
	}
}

func stored(id, name string, emb []float64) database.StoredIdentity {
	return database.StoredIdentity{StudentID: id, StudentName: name, Encoding: database.EncodeEmbedding(emb)}
}

func frameBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 32))
	for y := range 32 {
		for x := range 40 {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return buf.Bytes()
}

type fixture struct {
	svc        *Service
	identities *mock.MockIdentityStore
	attendance *mock.MockAttendanceStore
	detector   *stubDetector
	frame      []byte
}

func defaultPolicy() Policy {
	return Policy{Tolerance: 0.55, FrameThreshold: 5, Downscale: 0.25, EmbeddingDim: testDim}
}

func newFixture(t *testing.T, policy Policy, enrolled ...database.StoredIdentity) *fixture {
	t.Helper()
	ids := mock.NewMockIdentityStore()
	for _, e := range enrolled {
		ids.AddIdentity(e)
	}
	att := mock.NewMockAttendanceStore()
	det := &stubDetector{}

	svc := NewService(ids, att, det, policy, logging.Discard())
	clock := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	svc.now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	var seq int
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("session-%d", seq)
	}

	return &fixture{svc: svc, identities: ids, attendance: att, detector: det, frame: frameBytes(t)}
}

func (f *fixture) start(t *testing.T) *SessionSummary {
	t.Helper()
	summary, err := f.svc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return summary
}

func (f *fixture) process(t *testing.T) *FrameResult {
	t.Helper()
	res, err := f.svc.ProcessFrame(context.Background(), f.frame)
	if err != nil {
		t.Fatalf("ProcessFrame failed: %v", err)
	}
	return res
}

func (f *fixture) present(t *testing.T) []string {
	t.Helper()
	records, err := f.attendance.ListAttendance(context.Background())
	if err != nil {
		t.Fatalf("ListAttendance failed: %v", err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.StudentID)
	}
	return ids
}
