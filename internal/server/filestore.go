package server

import (
	"sort"
	"sync"
	"time"
)

// FileRecord is one uploaded file tracked by the backend.
type FileRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"-"`
}

// FileStore is the process-local registry of uploaded files. It is injected
// into the handlers and shared with the pruning job, so all access is
// mutex-guarded.
type FileStore struct {
	mu    sync.Mutex
	files map[string]FileRecord
}

// NewFileStore returns an empty store.
func NewFileStore() *FileStore {
	return &FileStore{files: make(map[string]FileRecord)}
}

// Put records an upload, replacing any entry with the same id.
func (s *FileStore) Put(rec FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rec.ID] = rec
}

// Remove drops an entry. Removing an unknown id is a no-op.
func (s *FileStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
}

// Get looks up one entry.
func (s *FileStore) Get(id string) (FileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[id]
	return rec, ok
}

// List returns all entries ordered by upload time, oldest first.
func (s *FileStore) List() []FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileRecord, 0, len(s.files))
	for _, rec := range s.files {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Prune drops entries uploaded before the cutoff and returns how many.
func (s *FileStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.files {
		if rec.UploadedAt.Before(cutoff) {
			delete(s.files, id)
			n++
		}
	}
	return n
}
