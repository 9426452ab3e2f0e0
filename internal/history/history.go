package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// RetentionWindow is how long history entries are kept before List prunes
// them.
const RetentionWindow = 7 * 24 * time.Hour

// Store is the local task history. It is a best-effort cache, not a source
// of truth: unknown task IDs never raise, and concurrent CLI invocations are
// not coordinated (last writer wins).
type Store interface {
	// Record inserts a pending entry for an unseen task ID, or refreshes
	// last-checked if the ID is already present.
	Record(ctx context.Context, taskID, inputFile string) error
	// UpdateStatus overwrites the stored status and error and refreshes
	// last-checked. It silently no-ops on unknown task IDs.
	UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus, taskErr string) error
	// SetResultPath records where a downloaded result was extracted.
	// Like UpdateStatus, it silently no-ops on unknown task IDs.
	SetResultPath(ctx context.Context, taskID, resultPath string) error
	// List prunes entries older than the retention window, persists the
	// pruned set, and returns the remainder in insertion order.
	List(ctx context.Context) ([]model.HistoryEntry, error)
}

// FileStoreConfig is the configuration for the file-backed history store.
type FileStoreConfig struct {
	// Path is the history document location.
	Path   string
	Logger log.Logger

	// Now is injectable for retention tests.
	Now func() time.Time
}

func (c *FileStoreConfig) defaults() error {
	if c.Path == "" {
		return fmt.Errorf("history path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "history.FileStore"})
	return nil
}

// FileStore persists the history as a single JSON document. Every mutating
// call rewrites the document in full.
type FileStore struct {
	path   string
	logger log.Logger
	now    func() time.Time
}

// NewFileStore creates a new file-backed history store.
func NewFileStore(cfg FileStoreConfig) (*FileStore, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &FileStore{
		path:   cfg.Path,
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

var _ Store = &FileStore{}

// historyDoc is the on-disk document shape.
type historyDoc struct {
	Entries []model.HistoryEntry `json:"entries"`
}

func (s *FileStore) Record(ctx context.Context, taskID, inputFile string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	now := s.now()
	for i := range doc.Entries {
		if doc.Entries[i].TaskID == taskID {
			doc.Entries[i].LastChecked = now
			return s.save(doc)
		}
	}

	doc.Entries = append(doc.Entries, model.HistoryEntry{
		TaskID:      taskID,
		InputFile:   inputFile,
		SubmittedAt: now,
		LastChecked: now,
		Status:      model.TaskStatusPending,
	})

	s.logger.Debugf("recorded task %s for %s", taskID, inputFile)
	return s.save(doc)
}

func (s *FileStore) UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus, taskErr string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	for i := range doc.Entries {
		if doc.Entries[i].TaskID != taskID {
			continue
		}
		doc.Entries[i].Status = status
		if taskErr != "" {
			doc.Entries[i].Error = taskErr
		}
		doc.Entries[i].LastChecked = s.now()
		return s.save(doc)
	}

	// Unknown IDs are fine, this is a cache.
	s.logger.Debugf("ignoring status update for unknown task %s", taskID)
	return nil
}

func (s *FileStore) SetResultPath(ctx context.Context, taskID, resultPath string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	for i := range doc.Entries {
		if doc.Entries[i].TaskID != taskID {
			continue
		}
		doc.Entries[i].ResultPath = resultPath
		doc.Entries[i].LastChecked = s.now()
		return s.save(doc)
	}

	s.logger.Debugf("ignoring result path for unknown task %s", taskID)
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]model.HistoryEntry, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-RetentionWindow)
	kept := make([]model.HistoryEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e.SubmittedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}

	if len(kept) != len(doc.Entries) {
		s.logger.Debugf("pruned %d history entries", len(doc.Entries)-len(kept))
		doc.Entries = kept
		if err := s.save(doc); err != nil {
			return nil, err
		}
	}

	return kept, nil
}

func (s *FileStore) load() (*historyDoc, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &historyDoc{}, nil
		}
		return nil, fmt.Errorf("could not read history: %w", err)
	}

	var doc historyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse history: %w", err)
	}
	return &doc, nil
}

func (s *FileStore) save(doc *historyDoc) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create history directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("could not write history: %w", err)
	}
	return nil
}
