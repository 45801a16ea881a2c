package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Store is the persistent mapping from video ID to analysis record.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record for id, or found=false when absent. A corrupt
	// or unreadable backing store degrades to absent rather than erroring.
	Get(ctx context.Context, id string) (record *AnalysisRecord, found bool, err error)

	// Put writes the record for id, replacing any prior record in full.
	Put(ctx context.Context, id string, record *AnalysisRecord) error
}

// FileStore keeps the whole mapping in one JSON file. On every access the
// file is loaded fully and on every Put rewritten fully, so all access is
// serialized behind a single mutex; a file lock additionally excludes
// writers from other processes sharing the same cache file.
type FileStore struct {
	path     string
	mu       sync.Mutex
	fileLock *flock.Flock
	logger   *Logger
}

// NewFileStore creates a JSON-file-backed store at path.
func NewFileStore(path string, logger *Logger) *FileStore {
	return &FileStore{
		path:     path,
		fileLock: flock.New(path + ".lock"),
		logger:   logger,
	}
}

// Get implements Store. Missing, unreadable, and corrupt cache files are
// all treated as a miss: availability wins over surfacing storage faults.
func (s *FileStore) Get(ctx context.Context, id string) (*AnalysisRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cache := s.load()
	record, ok := cache[id]
	return record, ok, nil
}

// Put implements Store. The whole mapping is re-read under the lock before
// the rewrite so concurrent writers for different IDs cannot discard each
// other's additions.
func (s *FileStore) Put(ctx context.Context, id string, record *AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fileLock.Lock(); err != nil {
		return fmt.Errorf("locking cache file: %w", err)
	}
	defer func() {
		if err := s.fileLock.Unlock(); err != nil {
			s.logger.WithError(err).Warn("failed to release cache file lock")
		}
	}()

	cache := s.load()
	cache[id] = record

	return s.save(cache)
}

// load reads the full mapping, returning an empty map on any failure.
func (s *FileStore) load() map[string]*AnalysisRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("cache file unreadable, treating as empty")
		}
		return map[string]*AnalysisRecord{}
	}

	var cache map[string]*AnalysisRecord
	if err := json.Unmarshal(data, &cache); err != nil {
		s.logger.WithError(err).Warn("cache file corrupt, treating as empty")
		return map[string]*AnalysisRecord{}
	}
	if cache == nil {
		cache = map[string]*AnalysisRecord{}
	}
	return cache
}

// save rewrites the full mapping.
func (s *FileStore) save(cache map[string]*AnalysisRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}
