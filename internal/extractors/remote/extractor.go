// Package remote provides an extractor backed by a sidecar extraction
// service. Formats that need heavyweight models (image OCR, PDF layout
// analysis, audio transcription) are shipped to the sidecar over HTTP
// and come back as plain text.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:9090"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the remote extraction service.
type Config struct {
	// BaseURL is the sidecar base URL (default: http://localhost:9090).
	BaseURL string

	// APIKey is an optional bearer token for the sidecar.
	APIKey string

	// Timeout is the request timeout (default: 120s). OCR and
	// transcription of large files can take a while.
	Timeout time.Duration
}

// Extractor sends files to the sidecar's /v1/extract endpoint.
type Extractor struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// extractResponse is the sidecar response format.
type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// New creates a new remote extractor.
func New(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"application/pdf",
		"image/png",
		"image/jpeg",
		"image/webp",
		"audio/wav",
		"audio/mpeg",
		"audio/mp4",
		"audio/x-m4a",
		"audio/webm",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 70 // Preferred over any local fallback for these formats
}

// Extract uploads the file and returns the transcribed or recognised text.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", raw.Name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(raw.Content); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.WriteField("mime_type", raw.MIMEType); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.baseURL+"/v1/extract",
		body,
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction service: %w: %w", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var extractResp extractResponse
	if err := json.Unmarshal(respBody, &extractResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if extractResp.Error != "" {
		return "", fmt.Errorf("extraction service: %s: %w", extractResp.Error, domain.ErrExtractionFailed)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service status %d: %w", resp.StatusCode, domain.ErrExtractionFailed)
	}

	return extractResp.Text, nil
}

// Ping validates the sidecar is reachable.
func (e *Extractor) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("remote: failed to create ping request: %w", err)
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: service returned status %d", resp.StatusCode)
	}
	return nil
}
