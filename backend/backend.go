// Package backend is the HTTP client for the recognition backend: the
// framed upload stream, single-page OCR, model status and warm-up, and
// the document persistence calls. Failures are classified into the three
// kinds the session cares about — cancellation, timeout, and
// backend-reported error — so callers can tell them apart with errors.Is.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"
)

var (
	// ErrCancelled marks a call aborted by the caller. Silent: not an
	// error state, fully retryable.
	ErrCancelled = errors.New("backend: call cancelled")

	// ErrTimeout marks a bounded wait that elapsed. Distinct from both
	// cancellation and backend-reported failure, and retryable.
	ErrTimeout = errors.New("backend: call timed out")
)

// APIError is a backend-reported failure with a human-readable detail
// message to surface verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.StatusCode, e.Detail)
}

// Config configures the client. Timeout budgets are differentiated by
// call class: status polling is short, single-page OCR and batch steps
// long, model load very long.
type Config struct {
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	StatusTimeout  time.Duration `json:"-" yaml:"-"`
	OCRTimeout     time.Duration `json:"-" yaml:"-"`
	LoadTimeout    time.Duration `json:"-" yaml:"-"`
	RequestTimeout time.Duration `json:"-" yaml:"-"`
}

// RegionData is one layout region in an OCR result.
type RegionData struct {
	Index int        `json:"idx"`
	BBox  [4]float64 `json:"bbox"`
	Text  string     `json:"text"`
	Label string     `json:"label,omitempty"`
}

// OCRResult is a successful single-page recognition.
type OCRResult struct {
	DocID   string       `json:"doc_id"`
	PageNum int          `json:"page_num"`
	Text    string       `json:"text"`
	TimeSec float64      `json:"time"`
	Regions []RegionData `json:"regions"`
	Cached  bool         `json:"cached"`
}

// StatusInfo reports model readiness.
type StatusInfo struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	LayoutLoaded bool   `json:"layout_loaded"`
}

// DocumentInfo is one entry of the backend's document list.
type DocumentInfo struct {
	ID        string `json:"doc_id"`
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
	CreatedAt string `json:"created_at"`
}

// UploadFile is one file of an upload request.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Client talks to one recognition backend instance.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client with per-class timeout defaults taken from the
// original service budgets.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3000"
	}
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = 5 * time.Second
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 120 * time.Second
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 300 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		// No client-level timeout: each call carries its own class
		// budget via context, and the upload stream stays open for as
		// long as page discovery runs.
		http: &http.Client{},
	}
}

// classify maps a transport error to the taxonomy. parent is the
// caller's context; when the parent was cancelled the call counts as
// user cancellation, when only the per-call budget elapsed it is a
// timeout.
func classify(parent context.Context, err error) error {
	switch {
	case parent.Err() == context.Canceled:
		return ErrCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCancelled
	}
	return err
}

// doJSON runs one request with the given per-call budget and decodes a
// JSON response into out. Non-2xx responses become *APIError with the
// backend's detail message when one is present.
func (c *Client) doJSON(ctx context.Context, budget time.Duration, method, path string, body io.Reader, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

// errorDetail extracts the backend's detail message from an error
// payload, falling back to the raw body.
func errorDetail(data []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(bytes.TrimSpace(data))
}

// Status checks model readiness. Short budget: this call is polled.
func (c *Client) Status(ctx context.Context) (*StatusInfo, error) {
	var info StatusInfo
	if err := c.doJSON(ctx, c.cfg.StatusTimeout, http.MethodGet, "/api/status", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LoadModel asks the backend to warm the recognition model. Very long
// budget: first load pulls weights onto the device.
func (c *Client) LoadModel(ctx context.Context) error {
	return c.doJSON(ctx, c.cfg.LoadTimeout, http.MethodPost, "/api/load-model", nil, nil)
}

// RecognizePage runs OCR on one page. The backend returns the cached
// result without re-running recognition when the page was already done.
func (c *Client) RecognizePage(ctx context.Context, docID string, pageNum int) (*OCRResult, error) {
	var res OCRResult
	path := fmt.Sprintf("/api/ocr/%s/%d", docID, pageNum)
	if err := c.doJSON(ctx, c.cfg.OCRTimeout, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SavePageText persists edited page text.
func (c *Client) SavePageText(ctx context.Context, docID string, pageNum int, text string) error {
	body, err := json.Marshal(map[string]any{"page_num": pageNum, "text": text})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/api/documents/%s/text", docID)
	return c.doJSON(ctx, c.cfg.RequestTimeout, http.MethodPut, path, bytes.NewReader(body), nil)
}

// ListDocuments returns the backend's document registry.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	var out struct {
		Documents []DocumentInfo `json:"documents"`
	}
	if err := c.doJSON(ctx, c.cfg.RequestTimeout, http.MethodGet, "/api/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// GetDocument returns one document's registry entry.
func (c *Client) GetDocument(ctx context.Context, docID string) (*DocumentInfo, error) {
	var info DocumentInfo
	if err := c.doJSON(ctx, c.cfg.RequestTimeout, http.MethodGet, "/api/documents/"+docID, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteDocument removes a document and its page images.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	path := "/api/documents/" + docID
	return c.doJSON(ctx, c.cfg.RequestTimeout, http.MethodDelete, path, nil, nil)
}

// Upload sends files as one multipart request and returns the open
// framed event-stream body. The caller owns the ReadCloser and feeds it
// to the ingest parser; the stream has no overall deadline because page
// discovery time scales with document size.
func (c *Client) Upload(ctx context.Context, files []UploadFile) (io.ReadCloser, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", filepath.Base(f.Name))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	return resp.Body, nil
}
