// Package detector is a thin client for the external face detection and
// embedding server. The model itself is a black box: it takes an image and
// returns bounding boxes plus fixed-length descriptor vectors.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const defaultDetectorURL = "http://localhost:8000"

// Detection represents a single detected face in a frame.
type Detection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixel coordinates
	DetScore  float64   `json:"det_score"`
}

// FrameResult represents the response from the face detection endpoint.
type FrameResult struct {
	FacesCount int         `json:"faces_count"`
	Faces      []Detection `json:"faces"`
	Model      string      `json:"model"`
}

// Detector is the interface consumed by the matching and enrollment code.
// Client implements it against the embedding server; tests use fakes.
type Detector interface {
	// DetectFaces finds all faces in a camera frame.
	DetectFaces(ctx context.Context, imageData []byte) (*FrameResult, error)
	// DetectPortrait finds the single most confident face in a still image,
	// used for caregiver-uploaded portraits. Returns nil without error when
	// no face is found.
	DetectPortrait(ctx context.Context, imageData []byte) (*Detection, error)
}

// Client talks to the face embedding server over HTTP.
type Client struct {
	baseURL       string
	minConfidence float64
	client        *http.Client
}

// NewClient creates a new detector client.
func NewClient(baseURL string, minConfidence float64) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		minConfidence: minConfidence,
		client:        &http.Client{},
	}
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries an explicit Content-Type header
// based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
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
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectFaces detects faces and computes their descriptors for one frame.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) (*FrameResult, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var result FrameResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Drop low-confidence detections before they reach the matcher.
	kept := result.Faces[:0]
	for _, f := range result.Faces {
		if f.DetScore >= c.minConfidence {
			kept = append(kept, f)
		}
	}
	result.Faces = kept
	result.FacesCount = len(kept)
	return &result, nil
}

// DetectPortrait detects the single most confident face in a still image.
func (c *Client) DetectPortrait(ctx context.Context, imageData []byte) (*Detection, error) {
	if len(imageData) == 0 {
		return nil, errors.New("empty image")
	}
	result, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	if len(result.Faces) == 0 {
		return nil, nil
	}

	best := result.Faces[0]
	for _, f := range result.Faces[1:] {
		if f.DetScore > best.DetScore {
			best = f
		}
	}
	if len(best.Embedding) == 0 {
		return nil, nil
	}
	return &best, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
