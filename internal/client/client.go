package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

const (
	defaultMaxAttempts    = 4
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Config is the configuration for the OCR API client.
type Config struct {
	// BaseURL is the API endpoint, e.g. "https://ocr.example.com".
	BaseURL string
	// APIKey is sent as a bearer token on every request.
	APIKey string
	// HTTPClient is the HTTP client for all requests.
	HTTPClient *http.Client
	// MaxAttempts bounds retries for transient failures (connection errors,
	// timeouts, 429 and 5xx responses).
	MaxAttempts int
	// RetryBaseDelay seeds the exponential retry backoff.
	RetryBaseDelay time.Duration
	Logger         log.Logger
}

func (c *Config) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "client.OCR"})
	return nil
}

// Client is a stateless-per-call wrapper over the remote OCR HTTP API. It
// owns retry with exponential backoff for transient failures; everything
// else (polling, batching) lives above it.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	maxAttempts    int
	retryBaseDelay time.Duration
	logger         log.Logger
}

// New creates a new OCR API client.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		httpClient:     cfg.HTTPClient,
		maxAttempts:    cfg.MaxAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		logger:         cfg.Logger,
	}, nil
}

// --- JSON wire types (private, API responses) ---

type healthJSON struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type modelInfoJSON struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Device      string   `json:"device"`
	MaxFileMB   int      `json:"max_file_mb"`
	Resolutions []string `json:"resolutions"`
}

type ocrResultJSON struct {
	Text       string `json:"text"`
	Pages      int    `json:"pages"`
	DurationMS int64  `json:"duration_ms"`
}

type submitAsyncJSON struct {
	TaskID string `json:"task_id"`
}

type taskJSON struct {
	TaskID      string     `json:"task_id"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Error       string     `json:"error"`
}

type errorJSON struct {
	Detail string `json:"detail"`
}

// Health checks the remote server health endpoint.
func (c *Client) Health(ctx context.Context) (*model.HealthStatus, error) {
	var res healthJSON
	err := c.getJSON(ctx, "/health", &res)
	if err != nil {
		return nil, err
	}
	return &model.HealthStatus{Status: res.Status, ModelLoaded: res.ModelLoaded}, nil
}

// ModelInfo returns the OCR model information from the server.
func (c *Client) ModelInfo(ctx context.Context) (*model.ModelInfo, error) {
	var res modelInfoJSON
	err := c.getJSON(ctx, "/api/v1/model", &res)
	if err != nil {
		return nil, err
	}
	return &model.ModelInfo{
		Name:        res.Name,
		Version:     res.Version,
		Device:      res.Device,
		MaxFileMB:   res.MaxFileMB,
		Resolutions: res.Resolutions,
	}, nil
}

// SubmitImage uploads an image and returns the synchronous OCR result.
func (c *Client) SubmitImage(ctx context.Context, filePath string, params model.ProcessParams) (*model.OCRResult, error) {
	var res ocrResultJSON
	err := c.postMultipart(ctx, "/api/v1/ocr/image", filePath, params, &res)
	if err != nil {
		return nil, fmt.Errorf("could not submit image: %w", err)
	}
	return &model.OCRResult{Text: res.Text, Pages: res.Pages, DurationMS: res.DurationMS}, nil
}

// SubmitPDF uploads a document and waits for the synchronous OCR result.
// Suitable for small documents only; use SubmitPDFAsync for the rest.
func (c *Client) SubmitPDF(ctx context.Context, filePath string, params model.ProcessParams) (*model.OCRResult, error) {
	var res ocrResultJSON
	err := c.postMultipart(ctx, "/api/v1/ocr/pdf", filePath, params, &res)
	if err != nil {
		return nil, fmt.Errorf("could not submit document: %w", err)
	}
	return &model.OCRResult{Text: res.Text, Pages: res.Pages, DurationMS: res.DurationMS}, nil
}

// SubmitPDFAsync uploads a document for asynchronous processing and returns
// the server-assigned task ID.
func (c *Client) SubmitPDFAsync(ctx context.Context, filePath string, params model.ProcessParams) (string, error) {
	var res submitAsyncJSON
	err := c.postMultipart(ctx, "/api/v1/ocr/pdf/async", filePath, params, &res)
	if err != nil {
		return "", fmt.Errorf("could not submit document: %w", err)
	}
	if res.TaskID == "" {
		return "", fmt.Errorf("server returned an empty task id")
	}
	return res.TaskID, nil
}

// TaskStatus queries the current snapshot of an asynchronous task.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*model.Task, error) {
	var res taskJSON
	err := c.getJSON(ctx, "/api/v1/tasks/"+taskID, &res)
	if err != nil {
		return nil, fmt.Errorf("could not get task %s: %w", taskID, err)
	}

	task := &model.Task{
		ID:          res.TaskID,
		Status:      model.TaskStatus(res.Status),
		Progress:    res.Progress,
		SubmittedAt: res.SubmittedAt,
		StartedAt:   res.StartedAt,
		CompletedAt: res.CompletedAt,
		ErrorDetail: res.Error,
	}
	if task.ID == "" {
		task.ID = taskID
	}
	return task, nil
}

// DownloadResult downloads the ZIP result of a completed task into destPath.
func (c *Client) DownloadResult(ctx context.Context, taskID, destPath string) error {
	err := c.withRetries(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/tasks/"+taskID+"/result", nil)
		if err != nil {
			return fmt.Errorf("could not create request: %w", err)
		}
		c.setAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryable(fmt.Errorf("request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("could not create result directory: %w", err)
		}

		f, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("could not create result file: %w", err)
		}
		defer f.Close()

		if _, err := io.Copy(f, resp.Body); err != nil {
			os.Remove(destPath)
			return retryable(fmt.Errorf("could not download result: %w", err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not download result of task %s: %w", taskID, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.withRetries(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("could not create request: %w", err)
		}
		c.setAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryable(fmt.Errorf("request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not decode response: %w", err)
		}
		return nil
	})
}

// postMultipart uploads the file plus params as a multipart form. The body
// is rebuilt on every attempt so retries resend the whole upload.
func (c *Client) postMultipart(ctx context.Context, path, filePath string, params model.ProcessParams, out interface{}) error {
	return c.withRetries(ctx, func() error {
		body, contentType, err := buildMultipartBody(filePath, params)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("could not create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		c.setAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryable(fmt.Errorf("request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not decode response: %w", err)
		}
		return nil
	})
}

func buildMultipartBody(filePath string, params model.ProcessParams) (*bytes.Buffer, string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("could not read file: %w", err)
	}

	fields := map[string]string{
		"mode":       params.Mode,
		"resolution": params.Resolution,
	}
	if params.Prompt != "" {
		fields["prompt"] = params.Prompt
	}
	if params.DPI > 0 {
		fields["dpi"] = strconv.Itoa(params.DPI)
	}
	if params.MaxPages > 0 {
		fields["max_pages"] = strconv.Itoa(params.MaxPages)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("could not write form field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("could not finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// statusError maps a non-200 response to the error taxonomy. The body is
// read for the server-provided detail message.
func (c *Client) statusError(resp *http.Response) error {
	detail := readErrorDetail(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, model.ErrTaskNotFound)
	case resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%s: %w", detail, model.ErrTaskExpired)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return retryable(fmt.Errorf("server returned %d: %s", resp.StatusCode, detail))
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, detail)
	}
}

func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no detail"
	}

	var e errorJSON
	if err := json.Unmarshal(data, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(data))
}

// retryableError marks an error as a transient failure worth retrying.
type retryableError struct {
	err error
}

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

func retryable(err error) error { return retryableError{err: err} }

// withRetries runs do up to the attempt ceiling, backing off exponentially
// between transient failures. Non-retryable errors surface immediately.
func (c *Client) withRetries(ctx context.Context, do func() error) error {
	var lastErr error
	delay := c.retryBaseDelay

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := do()
		if err == nil {
			return nil
		}

		rerr, ok := err.(retryableError)
		if !ok {
			return err
		}
		lastErr = rerr.err

		if attempt == c.maxAttempts {
			break
		}

		c.logger.Debugf("attempt %d/%d failed, retrying in %s: %s", attempt, c.maxAttempts, delay, lastErr)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return fmt.Errorf("%s (after %d attempts): %w", lastErr, c.maxAttempts, model.ErrTransient)
}
