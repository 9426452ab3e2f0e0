package client

import (
	"context"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// API is the remote OCR operation surface the app services consume.
type API interface {
	Health(ctx context.Context) (*model.HealthStatus, error)
	ModelInfo(ctx context.Context) (*model.ModelInfo, error)
	SubmitImage(ctx context.Context, filePath string, params model.ProcessParams) (*model.OCRResult, error)
	SubmitPDF(ctx context.Context, filePath string, params model.ProcessParams) (*model.OCRResult, error)
	SubmitPDFAsync(ctx context.Context, filePath string, params model.ProcessParams) (string, error)
	TaskStatus(ctx context.Context, taskID string) (*model.Task, error)
	DownloadResult(ctx context.Context, taskID, destPath string) error
}

var _ API = &Client{}
