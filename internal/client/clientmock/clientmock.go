// Package clientmock has mocks for the OCR API client used in tests.
package clientmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// MockAPI is a testify mock of the client.API interface.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Health(ctx context.Context) (*model.HealthStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HealthStatus), args.Error(1)
}

func (m *MockAPI) ModelInfo(ctx context.Context) (*model.ModelInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelInfo), args.Error(1)
}

func (m *MockAPI) SubmitImage(ctx context.Context, filePath string, params model.ProcessParams) (*model.OCRResult, error) {
	args := m.Called(ctx, filePath, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OCRResult), args.Error(1)
}

func (m *MockAPI) SubmitPDF(ctx context.Context, filePath string, params model.ProcessParams) (*model.OCRResult, error) {
	args := m.Called(ctx, filePath, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OCRResult), args.Error(1)
}

func (m *MockAPI) SubmitPDFAsync(ctx context.Context, filePath string, params model.ProcessParams) (string, error) {
	args := m.Called(ctx, filePath, params)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) TaskStatus(ctx context.Context, taskID string) (*model.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockAPI) DownloadResult(ctx context.Context, taskID, destPath string) error {
	args := m.Called(ctx, taskID, destPath)
	return args.Error(0)
}
