package memory

import (
	"context"
	"sync"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// Ensure ConvertedFileStore implements the interface.
var _ driven.ConvertedFileStore = (*ConvertedFileStore)(nil)

// ConvertedFileStore is an in-memory implementation of driven.ConvertedFileStore.
type ConvertedFileStore struct {
	mu    sync.RWMutex
	files map[string]domain.ConvertedFile
}

// NewConvertedFileStore creates a new in-memory converted file index.
func NewConvertedFileStore() *ConvertedFileStore {
	return &ConvertedFileStore{
		files: make(map[string]domain.ConvertedFile),
	}
}

// Upsert stores or replaces the entry keyed by (OriginalPath, Platform).
func (s *ConvertedFileStore) Upsert(_ context.Context, file domain.ConvertedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file.Key()] = file
	return nil
}

// Get retrieves the entry for a remote file.
func (s *ConvertedFileStore) Get(_ context.Context, originalPath string, platform domain.Platform) (*domain.ConvertedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := (&domain.ConvertedFile{OriginalPath: originalPath, Platform: platform}).Key()
	file, ok := s.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// ListByPlatform returns all index entries for a platform.
func (s *ConvertedFileStore) ListByPlatform(_ context.Context, platform domain.Platform) ([]domain.ConvertedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var files []domain.ConvertedFile
	for _, file := range s.files {
		if file.Platform == platform {
			files = append(files, file)
		}
	}
	return files, nil
}
