package printer

import (
	"strings"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// Printer knows how to print OCR task information in different formats.
type Printer interface {
	PrintTask(task model.Task) error
	PrintHistory(entries []model.HistoryEntry) error
	PrintBatchSummary(summary model.BatchSummary) error
	PrintModelInfo(info model.ModelInfo) error
	PrintHealth(health model.HealthStatus) error
	PrintConfig(cfg model.EffectiveConfig) error
	PrintMessage(msg string) error
}

// maskedCredentialLen is the minimum credential length eligible for partial
// display; anything shorter is fully masked to avoid leaking most of it.
const maskedCredentialLen = 16

// MaskCredential masks a credential for display: credentials of 16+
// characters show the first 8 and last 8 joined by an ellipsis, shorter ones
// are replaced entirely.
func MaskCredential(s string) string {
	if s == "" {
		return ""
	}
	if len(s) < maskedCredentialLen {
		return strings.Repeat("*", 8)
	}
	return s[:8] + "..." + s[len(s)-8:]
}
