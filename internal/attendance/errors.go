package attendance

import (
	"errors"

	"github.com/kozaktomas/face-attendance/internal/frame"
)

var (
	// ErrDecode is returned when an uploaded image cannot be decoded.
	ErrDecode = frame.ErrDecode

	// ErrNoFaceFound is returned when an enrollment image contains no face.
	ErrNoFaceFound = errors.New("no face found in the image")

	// ErrNotFound is returned when the addressed student is not enrolled.
	ErrNotFound = errors.New("student not found")

	// ErrAlreadyEnrolled is returned when enrolling a student ID that already exists.
	ErrAlreadyEnrolled = errors.New("student already enrolled")

	// ErrInvalidIdentity is returned when a student ID or name fails validation.
	ErrInvalidIdentity = errors.New("invalid student")

	// ErrDataIntegrity marks a stored embedding that cannot be decoded.
	ErrDataIntegrity = errors.New("stored embedding is corrupt")

	// ErrInvalidEmbedding is returned when the detector produced a vector of the wrong length.
	ErrInvalidEmbedding = errors.New("embedding has unexpected dimension")
)
