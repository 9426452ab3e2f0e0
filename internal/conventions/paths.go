package conventions

import (
	"path/filepath"
	"strings"

	"k8s.io/client-go/util/homedir"
)

const (
	// DefaultDataDir is the default data directory name (relative to home).
	DefaultDataDir = ".deepseekocr"
	// ConfigFile is the persisted configuration filename.
	ConfigFile = "config.yaml"
	// HistoryFile is the task history document filename.
	HistoryFile = "history.json"
	// DefaultOutputDir is the default results directory (relative to cwd).
	DefaultOutputDir = "deepseekocr-output"
)

// DataDir returns the per-user data directory.
func DataDir() string {
	return filepath.Join(homedir.HomeDir(), DefaultDataDir)
}

// ConfigPath returns the default persisted configuration file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), ConfigFile)
}

// HistoryPath returns the default task history document path.
func HistoryPath() string {
	return filepath.Join(DataDir(), HistoryFile)
}

// ArtifactPath returns where the text artifact for an input file goes.
// Markdown-producing modes get a .md extension, everything else .txt.
func ArtifactPath(outputDir, inputFile, mode string) string {
	stem := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	ext := ".txt"
	if mode == "markdown" || mode == "layout" {
		ext = ".md"
	}
	return filepath.Join(outputDir, stem+ext)
}

// TaskArchivePath returns where a task's downloaded ZIP result goes.
func TaskArchivePath(outputDir, taskID string) string {
	return filepath.Join(outputDir, taskID+".zip")
}

// TaskResultDir returns where a task's ZIP result is extracted.
func TaskResultDir(outputDir, taskID string) string {
	return filepath.Join(outputDir, taskID)
}
