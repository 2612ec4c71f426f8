// Package facedetect talks to the face detection and embedding service.
package facedetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/frame"
)

const (
	defaultServiceURL = "http://localhost:8000"
	faceEndpoint      = "/embed/face"
)

// Client computes face boxes and embeddings through the face service.
// It implements facematch.Detector.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new face service client. A zero timeout leaves
// deadlines to the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// faceDetection represents a single detected face
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse represents the response from the face embedding endpoint
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// DetectAndEmbed sends img to the face service and returns one detection per face,
// in the order the service reported them.
func (c *Client) DetectAndEmbed(ctx context.Context, img image.Image) ([]facematch.Detection, error) {
	data, err := frame.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	body, err := c.postMultipartImage(ctx, faceEndpoint, data)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	detections := make([]facematch.Detection, 0, len(faceResp.Faces))
	for _, f := range faceResp.Faces {
		box, ok := facematch.BoxFromCorners(f.BBox)
		if !ok {
			return nil, fmt.Errorf("face %d: malformed bbox %v", f.FaceIndex, f.BBox)
		}
		detections = append(detections, facematch.Detection{
			Box:       box,
			Embedding: toFloat64(f.Embedding),
		})
	}
	return detections, nil
}

// postMultipartImage posts JPEG data as the "file" form field and returns the response body.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face service error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

var _ facematch.Detector = (*Client)(nil)
