package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per result in a directory
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the results directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes a result to <dir>/<id>.json
func (fs *FileStore) Save(ctx context.Context, result *Result) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if result.ID == "" {
		return fmt.Errorf("result id is required")
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.WriteFile(fs.path(result.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}

// Get reads a single result
func (fs *FileStore) Get(ctx context.Context, id string) (*Result, error) {
	if !validID(id) {
		return nil, ErrResultNotFound
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.read(fs.path(id))
}

// List returns up to limit results, newest first. Unreadable files are skipped.
func (fs *FileStore) List(ctx context.Context, limit int) ([]*Result, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var list []*Result
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		r, err := fs.read(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			continue
		}
		list = append(list, r)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].FinishedAt.After(list[j].FinishedAt)
	})

	if limit = normalizeLimit(limit); len(list) > limit {
		list = list[:limit]
	}
	if list == nil {
		list = []*Result{}
	}
	return list, nil
}

// Close is a no-op for the file store
func (fs *FileStore) Close() error {
	return nil
}

func (fs *FileStore) read(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &r, nil
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.dir, fmt.Sprintf("%s.json", id))
}

// validID rejects ids that could escape the results directory
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}
