package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// Size ceilings per file kind.
const (
	MaxImageBytes    = 20 << 20
	MaxDocumentBytes = 200 << 20
)

// Parameter ranges.
const (
	MinDPI      = 72
	MaxDPI      = 300
	MinMaxPages = 1
	MaxMaxPages = 800
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
}

var documentExtensions = map[string]bool{
	".pdf": true,
}

var resolutions = map[string]bool{
	"tiny":   true,
	"small":  true,
	"base":   true,
	"large":  true,
	"gundam": true,
}

// KindOf classifies a file path by extension. It returns an error wrapping
// model.ErrValidation for unsupported extensions.
func KindOf(path string) (model.FileKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return model.FileKindImage, nil
	case documentExtensions[ext]:
		return model.FileKindDocument, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q: %w", ext, model.ErrValidation)
	}
}

// File checks that path exists, is a regular file, matches the kind's
// extension allow-list and is under the kind's size ceiling. It never
// touches the network.
func File(path string, kind model.FileKind) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %s does not exist: %w", path, model.ErrValidation)
		}
		return fmt.Errorf("could not stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file: %w", path, model.ErrValidation)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var maxBytes int64
	switch kind {
	case model.FileKindImage:
		if !imageExtensions[ext] {
			return fmt.Errorf("%s is not a supported image (%s): %w", path, extList(imageExtensions), model.ErrValidation)
		}
		maxBytes = MaxImageBytes
	case model.FileKindDocument:
		if !documentExtensions[ext] {
			return fmt.Errorf("%s is not a supported document (%s): %w", path, extList(documentExtensions), model.ErrValidation)
		}
		maxBytes = MaxDocumentBytes
	default:
		return fmt.Errorf("unknown file kind %q: %w", kind, model.ErrValidation)
	}

	if info.Size() > maxBytes {
		return fmt.Errorf("%s is %d bytes, over the %d byte limit: %w", path, info.Size(), maxBytes, model.ErrValidation)
	}
	return nil
}

// Params checks processing parameter ranges before submission.
func Params(p model.ProcessParams) error {
	if p.Resolution != "" && !resolutions[p.Resolution] {
		return fmt.Errorf("unknown resolution %q (%s): %w", p.Resolution, extList(resolutions), model.ErrValidation)
	}
	if p.DPI != 0 && (p.DPI < MinDPI || p.DPI > MaxDPI) {
		return fmt.Errorf("dpi %d out of range [%d, %d]: %w", p.DPI, MinDPI, MaxDPI, model.ErrValidation)
	}
	if p.MaxPages != 0 && (p.MaxPages < MinMaxPages || p.MaxPages > MaxMaxPages) {
		return fmt.Errorf("max pages %d out of range [%d, %d]: %w", p.MaxPages, MinMaxPages, MaxMaxPages, model.ErrValidation)
	}
	return nil
}

func extList(m map[string]bool) string {
	exts := make([]string, 0, len(m))
	for e := range m {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
