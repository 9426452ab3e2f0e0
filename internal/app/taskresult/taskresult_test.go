package taskresult_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lzy756/deepseekocr-cli/internal/app/taskresult"
	"github.com/lzy756/deepseekocr-cli/internal/client/clientmock"
	"github.com/lzy756/deepseekocr-cli/internal/history/historymock"
	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/task"
)

type fakePoller struct {
	task *model.Task
	err  error
}

func (p *fakePoller) Wait(ctx context.Context, taskID string, cfg task.WaitConfig, onProgress task.ProgressFunc) (*model.Task, error) {
	return p.task, p.err
}

func TestService_Run(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	outDir := t.TempDir()

	mapi := &clientmock.MockAPI{}
	mapi.On("DownloadResult", mock.Anything, "task-1", filepath.Join(outDir, "task-1.zip")).Once().Return(nil)

	mhist := &historymock.MockStore{}
	mhist.On("UpdateStatus", mock.Anything, "task-1", model.TaskStatusCompleted, "").Once().Return(nil)
	mhist.On("SetResultPath", mock.Anything, "task-1", filepath.Join(outDir, "task-1")).Once().Return(nil)

	svc, err := taskresult.NewService(taskresult.ServiceConfig{
		API:       mapi,
		Poller:    &fakePoller{task: &model.Task{ID: "task-1", Status: model.TaskStatusCompleted}},
		History:   mhist,
		OutputDir: outDir,
		Extract: func(archivePath, destDir string) (string, error) {
			return destDir, nil
		},
	})
	require.NoError(err)

	res, err := svc.Run(context.Background(), taskresult.Request{TaskID: "task-1"})
	require.NoError(err)

	assert.Equal("task-1", res.TaskID)
	assert.Equal(filepath.Join(outDir, "task-1"), res.ResultDir)

	mapi.AssertExpectations(t)
	mhist.AssertExpectations(t)
}

func TestService_RunEmptyTaskID(t *testing.T) {
	require := require.New(t)

	svc, err := taskresult.NewService(taskresult.ServiceConfig{
		API:       &clientmock.MockAPI{},
		Poller:    &fakePoller{},
		History:   &historymock.MockStore{},
		OutputDir: t.TempDir(),
	})
	require.NoError(err)

	_, err = svc.Run(context.Background(), taskresult.Request{})
	require.ErrorIs(err, model.ErrValidation)
}

func TestService_RunFailedTask(t *testing.T) {
	require := require.New(t)

	mhist := &historymock.MockStore{}
	mhist.On("UpdateStatus", mock.Anything, "task-1", model.TaskStatusFailed, mock.Anything).Once().Return(nil)

	waitErr := fmt.Errorf("task task-1 failed: page 3 unreadable: %w", model.ErrTaskFailed)
	svc, err := taskresult.NewService(taskresult.ServiceConfig{
		API:       &clientmock.MockAPI{},
		Poller:    &fakePoller{err: waitErr},
		History:   mhist,
		OutputDir: t.TempDir(),
	})
	require.NoError(err)

	_, err = svc.Run(context.Background(), taskresult.Request{TaskID: "task-1"})
	require.ErrorIs(err, model.ErrTaskFailed)

	mhist.AssertExpectations(t)
}

func TestService_RunExpiredResult(t *testing.T) {
	require := require.New(t)

	mapi := &clientmock.MockAPI{}
	mapi.On("DownloadResult", mock.Anything, "task-1", mock.Anything).Once().Return(
		fmt.Errorf("result retention elapsed: %w", model.ErrTaskExpired))

	mhist := &historymock.MockStore{}
	mhist.On("UpdateStatus", mock.Anything, "task-1", model.TaskStatusCompleted, "").Once().Return(nil)

	svc, err := taskresult.NewService(taskresult.ServiceConfig{
		API:       mapi,
		Poller:    &fakePoller{task: &model.Task{ID: "task-1", Status: model.TaskStatusCompleted}},
		History:   mhist,
		OutputDir: t.TempDir(),
	})
	require.NoError(err)

	_, err = svc.Run(context.Background(), taskresult.Request{TaskID: "task-1"})
	require.ErrorIs(err, model.ErrTaskExpired)
}
