package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*client.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{
		BaseURL:        srv.URL,
		APIKey:         "sk-test-0123456789abcdef",
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return c, srv
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		config client.Config
		expErr bool
	}{
		"valid config should create client": {
			config: client.Config{BaseURL: "https://ocr.example.com"},
			expErr: false,
		},
		"missing base URL should fail": {
			config: client.Config{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := client.New(test.config)
			if test.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClient_Health(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var gotPath, gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status": "ok", "model_loaded": true}`))
	}))

	h, err := c.Health(context.Background())
	require.NoError(err)

	assert.Equal("/health", gotPath)
	assert.Equal("Bearer sk-test-0123456789abcdef", gotAuth)
	assert.Equal("ok", h.Status)
	assert.True(h.ModelLoaded)
}

func TestClient_ModelInfo(t *testing.T) {
	require := require.New(t)

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal("/api/v1/model", r.URL.Path)
		w.Write([]byte(`{
			"name": "deepseek-ocr",
			"version": "1.2.0",
			"device": "cuda",
			"max_file_mb": 200,
			"resolutions": ["tiny", "base", "gundam"]
		}`))
	}))

	info, err := c.ModelInfo(context.Background())
	require.NoError(err)
	require.Equal("deepseek-ocr", info.Name)
	require.Equal("cuda", info.Device)
	require.Equal([]string{"tiny", "base", "gundam"}, info.Resolutions)
}

func TestClient_SubmitImage(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	imgPath := writeTempFile(t, "scan.png", "png-bytes")

	var gotFields map[string]string
	var gotFileName, gotFileBody string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal("/api/v1/ocr/image", r.URL.Path)
		require.Equal(http.MethodPost, r.Method)

		require.NoError(r.ParseMultipartForm(1 << 20))
		gotFields = map[string]string{}
		for k, vs := range r.MultipartForm.Value {
			gotFields[k] = vs[0]
		}

		f, hdr, err := r.FormFile("file")
		require.NoError(err)
		defer f.Close()
		gotFileName = hdr.Filename
		data, err := io.ReadAll(f)
		require.NoError(err)
		gotFileBody = string(data)

		w.Write([]byte(`{"text": "hello world", "pages": 1, "duration_ms": 840}`))
	}))

	res, err := c.SubmitImage(context.Background(), imgPath, model.ProcessParams{
		Mode:       "markdown",
		Resolution: "base",
		Prompt:     "tables as markdown",
	})
	require.NoError(err)

	assert.Equal("scan.png", gotFileName)
	assert.Equal("png-bytes", gotFileBody)
	assert.Equal("markdown", gotFields["mode"])
	assert.Equal("base", gotFields["resolution"])
	assert.Equal("tables as markdown", gotFields["prompt"])
	assert.Equal("hello world", res.Text)
	assert.Equal(1, res.Pages)
	assert.Equal(int64(840), res.DurationMS)
}

func TestClient_SubmitPDFAsync(t *testing.T) {
	require := require.New(t)

	pdfPath := writeTempFile(t, "report.pdf", "%PDF-1.7")

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal("/api/v1/ocr/pdf/async", r.URL.Path)
		require.NoError(r.ParseMultipartForm(1 << 20))
		require.Equal("144", r.FormValue("dpi"))
		require.Equal("40", r.FormValue("max_pages"))
		w.Write([]byte(`{"task_id": "task-7f3a"}`))
	}))

	id, err := c.SubmitPDFAsync(context.Background(), pdfPath, model.ProcessParams{
		Mode:       "markdown",
		Resolution: "base",
		DPI:        144,
		MaxPages:   40,
	})
	require.NoError(err)
	require.Equal("task-7f3a", id)
}

func TestClient_SubmitPDFAsyncEmptyTaskID(t *testing.T) {
	require := require.New(t)

	pdfPath := writeTempFile(t, "report.pdf", "%PDF-1.7")

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := c.SubmitPDFAsync(context.Background(), pdfPath, model.ProcessParams{Mode: "markdown", Resolution: "base"})
	require.Error(err)
}

func TestClient_TaskStatus(t *testing.T) {
	tests := map[string]struct {
		response  string
		status    int
		expTask   *model.Task
		expErrIs  error
		expDetail string
	}{
		"a processing task should map onto the snapshot type": {
			response: `{"task_id": "task-1", "status": "processing", "progress": 0.42}`,
			status:   http.StatusOK,
			expTask:  &model.Task{ID: "task-1", Status: model.TaskStatusProcessing, Progress: 0.42},
		},
		"a missing task id in the body should fall back to the requested one": {
			response: `{"status": "pending"}`,
			status:   http.StatusOK,
			expTask:  &model.Task{ID: "task-1", Status: model.TaskStatusPending},
		},
		"an unknown task should map to the not-found error": {
			response: `{"detail": "task not found"}`,
			status:   http.StatusNotFound,
			expErrIs: model.ErrTaskNotFound,
		},
		"an expired task should map to the expired error": {
			response:  `{"detail": "result expired"}`,
			status:    http.StatusGone,
			expErrIs:  model.ErrTaskExpired,
			expDetail: "result expired",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal("/api/v1/tasks/task-1", r.URL.Path)
				w.WriteHeader(test.status)
				w.Write([]byte(test.response))
			}))

			task, err := c.TaskStatus(context.Background(), "task-1")

			if test.expErrIs != nil {
				require.ErrorIs(err, test.expErrIs)
				if test.expDetail != "" {
					require.Contains(err.Error(), test.expDetail)
				}
				return
			}
			require.NoError(err)
			require.Equal(test.expTask, task)
		})
	}
}

func TestClient_TaskStatusRetriesTransient(t *testing.T) {
	require := require.New(t)

	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"task_id": "task-1", "status": "completed", "progress": 1}`))
	}))

	task, err := c.TaskStatus(context.Background(), "task-1")
	require.NoError(err)
	require.Equal(model.TaskStatusCompleted, task.Status)
	require.Equal(int32(3), calls)
}

func TestClient_TaskStatusRetryCeiling(t *testing.T) {
	require := require.New(t)

	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "model crashed"}`))
	}))

	_, err := c.TaskStatus(context.Background(), "task-1")
	require.ErrorIs(err, model.ErrTransient)
	require.Contains(err.Error(), "model crashed")
	require.Equal(int32(3), calls)
}

func TestClient_TaskStatusNoRetryOnClientError(t *testing.T) {
	require := require.New(t)

	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "invalid resolution"}`))
	}))

	_, err := c.TaskStatus(context.Background(), "task-1")
	require.Error(err)
	require.NotErrorIs(err, model.ErrTransient)
	require.Equal(int32(1), calls)
}

func TestClient_SubmitImageRetryRebuildsBody(t *testing.T) {
	require := require.New(t)

	imgPath := writeTempFile(t, "scan.png", "png-bytes")

	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Whole upload must arrive again on the retried attempt.
		require.NoError(r.ParseMultipartForm(1 << 20))
		f, _, err := r.FormFile("file")
		require.NoError(err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(err)
		require.Equal("png-bytes", string(data))

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"text": "ok", "pages": 1, "duration_ms": 10}`))
	}))

	res, err := c.SubmitImage(context.Background(), imgPath, model.ProcessParams{Mode: "plain", Resolution: "base"})
	require.NoError(err)
	require.Equal("ok", res.Text)
	require.Equal(int32(2), calls)
}

func TestClient_DownloadResult(t *testing.T) {
	require := require.New(t)

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal("/api/v1/tasks/task-1/result", r.URL.Path)
		w.Write([]byte("zip-bytes"))
	}))

	dest := filepath.Join(t.TempDir(), "results", "task-1.zip")
	require.NoError(c.DownloadResult(context.Background(), "task-1", dest))

	data, err := os.ReadFile(dest)
	require.NoError(err)
	require.Equal("zip-bytes", string(data))
}

func TestClient_DownloadResultExpired(t *testing.T) {
	require := require.New(t)

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		w.Write([]byte(`{"detail": "result retention elapsed"}`))
	}))

	dest := filepath.Join(t.TempDir(), "task-1.zip")
	err := c.DownloadResult(context.Background(), "task-1", dest)
	require.ErrorIs(err, model.ErrTaskExpired)

	_, statErr := os.Stat(dest)
	require.True(os.IsNotExist(statErr))
}

func TestClient_NoAuthHeaderWithoutKey(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(r.Header.Get("Authorization"))
		w.Write([]byte(`{"status": "ok", "model_loaded": false}`))
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{BaseURL: srv.URL})
	require.NoError(err)

	_, err = c.Health(context.Background())
	require.NoError(err)
}
