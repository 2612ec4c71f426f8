// Package facematch resolves detected faces against enrolled identities.
// Matching is a pure function of the enrolled candidates and the detections of one frame.
package facematch

import (
	"context"
	"image"
)

// UnknownName is reported for detections that resolve to no enrolled identity.
const UnknownName = "Unknown"

// BoundingBox is a face region in pixel coordinates.
type BoundingBox struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Detection is one face found in a frame. It lives only for the duration of a frame.
type Detection struct {
	Box       BoundingBox
	Embedding []float64
}

// Candidate is an enrolled identity eligible for matching.
type Candidate struct {
	ID        string
	Name      string
	Embedding []float64
}

// Result is the resolution of a single detection.
type Result struct {
	IdentityID string      // empty when the detection is Unknown
	Name       string      // display name or UnknownName
	Distance   *float64    // nearest-neighbour distance rounded to 2 decimals, nil with no candidates
	Box        BoundingBox // region the detection was found in
}

// Matched reports whether the detection resolved to an enrolled identity.
func (r Result) Matched() bool {
	return r.IdentityID != ""
}

// Detector finds faces in an image and computes one embedding per face.
// Implementations make no promise about ordering; the result may be empty.
type Detector interface {
	DetectAndEmbed(ctx context.Context, img image.Image) ([]Detection, error)
}
