package ocr_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lzy756/deepseekocr-cli/internal/app/ocr"
	"github.com/lzy756/deepseekocr-cli/internal/client/clientmock"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

func writeImage(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))
	return path
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config ocr.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: ocr.ServiceConfig{API: &clientmock.MockAPI{}, OutputDir: "/tmp/out"},
			expErr: false,
		},
		"missing api client should fail": {
			config: ocr.ServiceConfig{OutputDir: "/tmp/out"},
			expErr: true,
		},
		"missing output dir should fail": {
			config: ocr.ServiceConfig{API: &clientmock.MockAPI{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ocr.NewService(test.config)
			if test.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	outDir := t.TempDir()
	imgPath := writeImage(t)
	params := model.ProcessParams{Mode: "markdown", Resolution: "base"}

	mapi := &clientmock.MockAPI{}
	mapi.On("SubmitImage", mock.Anything, imgPath, params).Once().Return(
		&model.OCRResult{Text: "# Scan", Pages: 1, DurationMS: 840}, nil)

	svc, err := ocr.NewService(ocr.ServiceConfig{API: mapi, OutputDir: outDir})
	require.NoError(err)

	res, err := svc.Run(context.Background(), ocr.Request{File: imgPath, Params: params})
	require.NoError(err)

	assert.Equal(filepath.Join(outDir, "scan.md"), res.OutputPath)
	assert.Equal("# Scan", res.Text)
	assert.Equal(int64(840), res.DurationMS)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(err)
	assert.Equal("# Scan", string(data))

	mapi.AssertExpectations(t)
}

func TestService_RunPlainTextArtifact(t *testing.T) {
	require := require.New(t)

	outDir := t.TempDir()
	imgPath := writeImage(t)

	mapi := &clientmock.MockAPI{}
	mapi.On("SubmitImage", mock.Anything, imgPath, mock.Anything).Once().Return(
		&model.OCRResult{Text: "plain text", Pages: 1}, nil)

	svc, err := ocr.NewService(ocr.ServiceConfig{API: mapi, OutputDir: outDir})
	require.NoError(err)

	res, err := svc.Run(context.Background(), ocr.Request{
		File:   imgPath,
		Params: model.ProcessParams{Mode: "text"},
	})
	require.NoError(err)
	require.Equal(filepath.Join(outDir, "scan.txt"), res.OutputPath)
}

func TestService_RunErrors(t *testing.T) {
	tests := map[string]struct {
		request   func(t *testing.T) ocr.Request
		submitErr error
		expErrIs  error
	}{
		"a missing file should fail validation": {
			request: func(t *testing.T) ocr.Request {
				return ocr.Request{File: filepath.Join(t.TempDir(), "nope.png")}
			},
			expErrIs: model.ErrValidation,
		},
		"bad params should fail validation": {
			request: func(t *testing.T) ocr.Request {
				return ocr.Request{File: writeImage(t), Params: model.ProcessParams{Resolution: "ultra"}}
			},
			expErrIs: model.ErrValidation,
		},
		"a submission failure should surface": {
			request: func(t *testing.T) ocr.Request {
				return ocr.Request{File: writeImage(t)}
			},
			submitErr: fmt.Errorf("server unreachable: %w", model.ErrTransient),
			expErrIs:  model.ErrTransient,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			mapi := &clientmock.MockAPI{}
			if test.submitErr != nil {
				mapi.On("SubmitImage", mock.Anything, mock.Anything, mock.Anything).Once().Return(nil, test.submitErr)
			}

			svc, err := ocr.NewService(ocr.ServiceConfig{API: mapi, OutputDir: t.TempDir()})
			require.NoError(err)

			_, err = svc.Run(context.Background(), test.request(t))
			require.ErrorIs(err, test.expErrIs)
		})
	}
}
