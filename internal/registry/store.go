package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the people list as a whole document. There is deliberately
// no partial-update protocol: every mutation rewrites the document.
type Store interface {
	Load() ([]Person, error)
	Save(people []Person) error
}

// FileStore keeps the document as a JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document. A missing file yields an empty list.
func (s *FileStore) Load() ([]Person, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var people []Person
	if err := json.Unmarshal(data, &people); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return people, nil
}

// Save writes the document atomically (temp file + rename).
func (s *FileStore) Save(people []Person) error {
	data, err := json.MarshalIndent(people, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding people: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps the document in memory. Used in tests and for sessions
// that should not touch disk.
type MemoryStore struct {
	people []Person
}

func NewMemoryStore(people []Person) *MemoryStore {
	return &MemoryStore{people: people}
}

func (s *MemoryStore) Load() ([]Person, error) {
	out := make([]Person, len(s.people))
	copy(out, s.people)
	return out, nil
}

func (s *MemoryStore) Save(people []Person) error {
	s.people = make([]Person, len(people))
	copy(s.people, people)
	return nil
}
