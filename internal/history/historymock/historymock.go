// Package historymock has mocks for the task history store used in tests.
package historymock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// MockStore is a testify mock of the history.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Record(ctx context.Context, taskID, inputFile string) error {
	args := m.Called(ctx, taskID, inputFile)
	return args.Error(0)
}

func (m *MockStore) UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus, taskErr string) error {
	args := m.Called(ctx, taskID, status, taskErr)
	return args.Error(0)
}

func (m *MockStore) SetResultPath(ctx context.Context, taskID, resultPath string) error {
	args := m.Called(ctx, taskID, resultPath)
	return args.Error(0)
}

func (m *MockStore) List(ctx context.Context) ([]model.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}
