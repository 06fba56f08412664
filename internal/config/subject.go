package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureSubjectID returns the stable subject id for this device. An explicit
// SUBJECT_ID wins; otherwise the id is read from a file next to the registry
// document, generated and persisted on first run.
func EnsureSubjectID(cfg *RegistryConfig) (string, error) {
	if cfg.SubjectID != "" {
		return cfg.SubjectID, nil
	}

	path := filepath.Join(filepath.Dir(cfg.Path), "subject_id")
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			cfg.SubjectID = id
			return id, nil
		}
	}

	id := "subject_" + uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persisting subject id: %w", err)
	}
	cfg.SubjectID = id
	return id, nil
}
