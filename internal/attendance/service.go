// Package attendance runs attendance sessions: it matches faces in camera frames
// against the enrolled students and records each student present once per session.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/frame"
)

// Policy is the recognition and debounce configuration of a service.
type Policy struct {
	Tolerance      float64
	FrameThreshold int
	Downscale      float64
	EmbeddingDim   int
}

// PolicyFromConfig builds a policy from the attendance config section.
func PolicyFromConfig(cfg config.AttendanceConfig) Policy {
	return Policy{
		Tolerance:      cfg.Tolerance,
		FrameThreshold: cfg.FrameThreshold,
		Downscale:      cfg.Downscale,
		EmbeddingDim:   cfg.EmbeddingDim,
	}
}

// Identity is an enrolled student without the embedding.
type Identity struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// SessionSummary describes a freshly started session.
type SessionSummary struct {
	SessionID  string    `json:"session_id"`
	StartedAt  time.Time `json:"started_at"`
	Identities int       `json:"identities"`
	Skipped    []string  `json:"skipped"`
}

// FrameResult is the outcome of one processed frame. Boxes are in the
// coordinates of the original, non-downscaled frame.
type FrameResult struct {
	SessionID  string
	Detections []facematch.Result
}

// Lookalike is another enrolled student whose face embedding is close to the queried one.
type Lookalike struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Distance    float64 `json:"distance"`
	Confusable  bool    `json:"confusable"`
}

// Service owns the current session and serializes session resets against frame processing.
type Service struct {
	identities database.IdentityWriter
	attendance database.AttendanceWriter
	detector   facematch.Detector
	policy     Policy
	matcher    facematch.Matcher
	log        logrus.FieldLogger
	validate   *validator.Validate

	now   func() time.Time
	newID func() string

	mu      sync.RWMutex
	session *Session
}

// NewService creates a service with an empty session: until StartSession is
// called every face resolves to Unknown and nothing is recorded.
func NewService(
	identities database.IdentityWriter,
	attendance database.AttendanceWriter,
	detector facematch.Detector,
	policy Policy,
	log logrus.FieldLogger,
) *Service {
	if policy.FrameThreshold < 1 {
		policy.FrameThreshold = 1
	}
	if policy.Tolerance <= 0 {
		policy.Tolerance = facematch.DefaultTolerance
	}

	s := &Service{
		identities: identities,
		attendance: attendance,
		detector:   detector,
		policy:     policy,
		matcher:    facematch.NewMatcher(policy.Tolerance),
		log:        log,
		validate:   newValidator(),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	s.session = newSession("", time.Time{}, NewStore(nil, policy.EmbeddingDim), database.NewIdentityIndex(), policy.FrameThreshold)
	return s
}

// StartSession begins a new session: it reloads the enrolled students, clears
// the attendance log and resets every counter. On a storage error the previous
// session stays active.
func (s *Service) StartSession(ctx context.Context) (*SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.identities.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading students: %w", err)
	}

	store := NewStore(stored, s.policy.EmbeddingDim)
	skipped := make([]string, 0, len(store.Skipped()))
	for _, sk := range store.Skipped() {
		s.log.WithError(sk.Err).WithField("student_id", sk.StudentID).Error("Skipping student with corrupt embedding")
		skipped = append(skipped, sk.StudentID)
	}

	entries := make([]database.IndexEntry, 0, store.Len())
	for _, c := range store.Snapshot() {
		entries = append(entries, database.IndexEntry{ID: c.ID, Name: c.Name, Embedding: c.Embedding})
	}
	index := database.NewIdentityIndex()
	index.Build(entries)

	if err := s.attendance.ClearAttendance(ctx); err != nil {
		return nil, fmt.Errorf("clearing attendance: %w", err)
	}

	sess := newSession(s.newID(), s.now(), store, index, s.policy.FrameThreshold)
	s.session = sess

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"students":   store.Len(),
		"skipped":    len(skipped),
	}).Info("Attendance session started")

	return &SessionSummary{
		SessionID:  sess.ID,
		StartedAt:  sess.StartedAt,
		Identities: store.Len(),
		Skipped:    skipped,
	}, nil
}

// ProcessFrame detects faces in a camera frame, resolves each against the
// session's students and records attendance for students seen in enough frames.
// Storage failures while recording are logged, never returned.
func (s *Service) ProcessFrame(ctx context.Context, data []byte) (*FrameResult, error) {
	img, err := frame.Decode(data)
	if err != nil {
		return nil, err
	}
	small := frame.Downscale(img, s.policy.Downscale)

	detections, err := s.detector.DetectAndEmbed(ctx, small)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}

	upscale := 1.0
	if s.policy.Downscale > 0 && s.policy.Downscale < 1 {
		upscale = 1 / s.policy.Downscale
	}
	mismatched, lastDim := 0, 0
	for i := range detections {
		detections[i].Box = facematch.ScaleBox(detections[i].Box, upscale)
		if n := len(detections[i].Embedding); n != s.policy.EmbeddingDim {
			mismatched++
			lastDim = n
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.session
	if mismatched > 0 {
		s.log.WithFields(logrus.Fields{
			"session_id": sess.ID,
			"faces":      len(detections),
			"mismatched": mismatched,
			"dim":        lastDim,
			"want_dim":   s.policy.EmbeddingDim,
		}).Warn("Detector returned embeddings of unexpected dimension")
	}
	results := s.matcher.MatchFrame(sess.store.Snapshot(), detections)
	for _, r := range results {
		if !r.Matched() {
			continue
		}
		count, commit := sess.observe(r.IdentityID)
		if commit {
			s.commit(ctx, sess, r, count)
		}
	}

	return &FrameResult{SessionID: sess.ID, Detections: results}, nil
}

// commit persists the attendance record of a matched student. The caller holds the read lock.
func (s *Service) commit(ctx context.Context, sess *Session, r facematch.Result, count int) {
	record := database.AttendanceRecord{
		StudentID:   r.IdentityID,
		StudentName: r.Name,
		SessionID:   sess.ID,
		MarkedAt:    s.now(),
	}
	fields := logrus.Fields{"student_id": r.IdentityID, "session_id": sess.ID, "frames": count}

	err := s.attendance.InsertAttendance(ctx, record)
	switch {
	case err == nil:
		s.log.WithFields(fields).Info("Attendance recorded")
	case errors.Is(err, database.ErrConflict):
		s.log.WithFields(fields).Debug("Attendance already recorded")
	default:
		sess.release(r.IdentityID)
		s.log.WithFields(fields).WithError(err).Error("Failed to record attendance, will retry on next frame")
	}
}

// Enroll detects the face in the request image and stores the student with the
// embedding of the first detected face. Enrolling an existing student ID fails with
// ErrAlreadyEnrolled. The running session is not affected until the next StartSession.
func (s *Service) Enroll(ctx context.Context, req EnrollRequest) (*Identity, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.StudentName = strings.TrimSpace(req.StudentName)
	if err := s.validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	if _, err := s.identities.GetIdentity(ctx, req.StudentID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyEnrolled, req.StudentID)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("checking student: %w", err)
	}

	img, err := frame.Decode(req.Image)
	if err != nil {
		return nil, err
	}

	detections, err := s.detector.DetectAndEmbed(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	if len(detections) == 0 {
		return nil, ErrNoFaceFound
	}

	emb := detections[0].Embedding
	if len(emb) != s.policy.EmbeddingDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidEmbedding, len(emb), s.policy.EmbeddingDim)
	}

	err = s.identities.InsertIdentity(ctx, database.StoredIdentity{
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		Encoding:    database.EncodeEmbedding(emb),
	})
	if errors.Is(err, database.ErrConflict) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyEnrolled, req.StudentID)
	}
	if err != nil {
		return nil, fmt.Errorf("storing student: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"student_id": req.StudentID,
		"faces":      len(detections),
	}).Info("Student enrolled")

	return &Identity{StudentID: req.StudentID, StudentName: req.StudentName, EnrolledAt: s.now()}, nil
}

// Remove deletes an enrolled student. The running session keeps matching them
// until the next StartSession; an already recorded attendance stays.
func (s *Service) Remove(ctx context.Context, studentID string) error {
	err := s.identities.DeleteIdentity(ctx, studentID)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, studentID)
	}
	if err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}
	s.log.WithField("student_id", studentID).Info("Student removed")
	return nil
}

// ListIdentities returns the enrolled students in enrollment order, optionally
// filtered by a query matched against the ID and the diacritic-folded name.
func (s *Service) ListIdentities(ctx context.Context, query string) ([]Identity, error) {
	stored, err := s.identities.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	query = strings.TrimSpace(query)
	result := make([]Identity, 0, len(stored))
	for _, st := range stored {
		if query != "" &&
			!strings.Contains(strings.ToLower(st.StudentID), strings.ToLower(query)) &&
			!facematch.NameContains(st.StudentName, query) {
			continue
		}
		result = append(result, *identityFromStored(st))
	}
	return result, nil
}

// ListAttendance returns the attendance records of the current session in commit order.
func (s *Service) ListAttendance(ctx context.Context) ([]database.AttendanceRecord, error) {
	records, err := s.attendance.ListAttendance(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	return records, nil
}

// Status returns the counters and committed students of the current session.
func (s *Service) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.status()
}

// Lookalikes returns up to limit students of the current session closest to the
// given one. Students closer than the tolerance are flagged as confusable.
func (s *Service) Lookalikes(studentID string, limit int) ([]Lookalike, error) {
	s.mu.RLock()
	index := s.session.index
	s.mu.RUnlock()

	found, err := index.Lookalikes(studentID, limit)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s is not part of the current session", ErrNotFound, studentID)
	}
	if err != nil {
		return nil, err
	}

	result := make([]Lookalike, 0, len(found))
	for _, f := range found {
		result = append(result, Lookalike{
			StudentID:   f.ID,
			StudentName: f.Name,
			Distance:    facematch.RoundDistance(f.Distance),
			Confusable:  f.Distance < s.policy.Tolerance,
		})
	}
	return result, nil
}

func identityFromStored(st database.StoredIdentity) *Identity {
	return &Identity{
		StudentID:   st.StudentID,
		StudentName: st.StudentName,
		EnrolledAt:  st.CreatedAt,
	}
}
