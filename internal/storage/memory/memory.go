package memory

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"catalog/internal/storage"

	"github.com/google/uuid"
)

// fileEntry stores metadata about an uploaded file in memory.
type fileEntry struct {
	PublicID    string
	ContentType string
	Size        int64
	URL         string
}

// Storage implements storage.Storage using an in-memory map. File bytes are
// drained and discarded; only metadata is kept.
type Storage struct {
	mu      sync.RWMutex
	files   map[string]*fileEntry
	baseURL string
}

// New creates a new in-memory storage instance.
func New(baseURL string) *Storage {
	return &Storage{
		files:   make(map[string]*fileEntry),
		baseURL: baseURL,
	}
}

// Upload records the file and returns a URL under baseURL.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Data != nil {
		if _, err := io.Copy(io.Discard, input.Data); err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
	}

	publicID := path.Join(input.Folder, uuid.NewString())
	url := fmt.Sprintf("%s/media/%s", s.baseURL, publicID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[publicID] = &fileEntry{
		PublicID:    publicID,
		ContentType: input.ContentType,
		Size:        input.Size,
		URL:         url,
	}

	return &storage.UploadResult{
		PublicID: publicID,
		URL:      url,
	}, nil
}

// Delete removes file metadata from memory.
func (s *Storage) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, publicID)
	return nil
}

// Has reports whether a file with the given public id is stored.
func (s *Storage) Has(publicID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[publicID]
	return ok
}

// Len returns the number of stored files.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.files)
}
