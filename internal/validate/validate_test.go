package validate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/validate"
)

func TestKindOf(t *testing.T) {
	tests := map[string]struct {
		path    string
		expKind model.FileKind
		expErr  bool
	}{
		"a png should classify as an image": {
			path:    "scan.png",
			expKind: model.FileKindImage,
		},
		"an uppercase extension should still classify": {
			path:    "photo.JPEG",
			expKind: model.FileKindImage,
		},
		"a pdf should classify as a document": {
			path:    "/tmp/reports/q3.pdf",
			expKind: model.FileKindDocument,
		},
		"an unsupported extension should fail": {
			path:   "notes.txt",
			expErr: true,
		},
		"a path without extension should fail": {
			path:   "Makefile",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			kind, err := validate.KindOf(test.path)

			if test.expErr {
				require.ErrorIs(err, model.ErrValidation)
			} else {
				require.NoError(err)
				require.Equal(test.expKind, kind)
			}
		})
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png-bytes"), 0644))
	pdfPath := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0644))

	tests := map[string]struct {
		path   string
		kind   model.FileKind
		expErr bool
	}{
		"a valid image should pass": {
			path: imgPath,
			kind: model.FileKindImage,
		},
		"a valid document should pass": {
			path: pdfPath,
			kind: model.FileKindDocument,
		},
		"a missing file should fail": {
			path:   filepath.Join(dir, "nope.png"),
			kind:   model.FileKindImage,
			expErr: true,
		},
		"a directory should fail": {
			path:   dir,
			kind:   model.FileKindImage,
			expErr: true,
		},
		"a pdf checked as an image should fail": {
			path:   pdfPath,
			kind:   model.FileKindImage,
			expErr: true,
		},
		"an image checked as a document should fail": {
			path:   imgPath,
			kind:   model.FileKindDocument,
			expErr: true,
		},
		"an unknown kind should fail": {
			path:   imgPath,
			kind:   model.FileKind("spreadsheet"),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			err := validate.File(test.path, test.kind)

			if test.expErr {
				require.ErrorIs(err, model.ErrValidation)
			} else {
				require.NoError(err)
			}
		})
	}
}

func TestParams(t *testing.T) {
	tests := map[string]struct {
		params model.ProcessParams
		expErr bool
	}{
		"empty params should pass": {
			params: model.ProcessParams{},
		},
		"a known resolution should pass": {
			params: model.ProcessParams{Resolution: "gundam"},
		},
		"an unknown resolution should fail": {
			params: model.ProcessParams{Resolution: "ultra"},
			expErr: true,
		},
		"dpi at the limits should pass": {
			params: model.ProcessParams{DPI: 300},
		},
		"dpi below range should fail": {
			params: model.ProcessParams{DPI: 50},
			expErr: true,
		},
		"dpi above range should fail": {
			params: model.ProcessParams{DPI: 400},
			expErr: true,
		},
		"max pages in range should pass": {
			params: model.ProcessParams{MaxPages: 800},
		},
		"max pages above range should fail": {
			params: model.ProcessParams{MaxPages: 801},
			expErr: true,
		},
		"negative max pages should fail": {
			params: model.ProcessParams{MaxPages: -1},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			err := validate.Params(test.params)

			if test.expErr {
				require.ErrorIs(err, model.ErrValidation)
			} else {
				require.NoError(err)
			}
		})
	}
}
