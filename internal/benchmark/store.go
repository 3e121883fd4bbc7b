package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/moby/sys/atomicwriter"
)

// Store persists runs between invocations.
type Store interface {
	Save(run Run) error
	// LoadLatest returns the most recent run, or nil if none was saved yet.
	LoadLatest() (*Run, error)
	// LoadAll returns every run, oldest first.
	LoadAll() ([]Run, error)
	Close() error
}

// FileStore keeps the history as a single JSON array. Every Save rewrites the
// whole file.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
		}
	}
	return &FileStore{path: path}, nil
}

// Save appends run with the next free ID.
func (s *FileStore) Save(run Run) error {
	runs, err := s.read()
	if err != nil {
		return err
	}

	var last int64
	for _, r := range runs {
		last = max(last, r.ID)
	}
	run.ID = last + 1

	data, err := json.MarshalIndent(append(runs, run), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return atomicwriter.WriteFile(s.path, data, 0o644)
}

func (s *FileStore) LoadAll() ([]Run, error) {
	runs, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *FileStore) LoadLatest() (*Run, error) {
	runs, err := s.LoadAll()
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[len(runs)-1], nil
}

// Close is a no-op; the file is only open for the duration of each call.
func (s *FileStore) Close() error {
	return nil
}

// read returns the stored runs in file order. A missing or empty file is an
// empty history.
func (s *FileStore) read() ([]Run, error) {
	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		return []Run{}, nil
	case err != nil:
		return nil, err
	case len(data) == 0:
		return []Run{}, nil
	}

	var runs []Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", s.path, err)
	}
	return runs, nil
}
