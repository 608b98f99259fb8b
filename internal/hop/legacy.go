// internal/hop/legacy.go

package hop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hopman/internal/models"
)

// readLegacyCredentials loads the original JSON credential store. The file
// is a top-level JSON array of credential records, not an object keyed by
// id. A missing file yields an empty list; unreadable or malformed content
// is an error for the caller to degrade on.
func readLegacyCredentials(path string) ([]models.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read legacy credentials: %v", err)
	}

	var creds []models.Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse legacy credentials: %v", err)
	}
	for i := range creds {
		creds[i].Normalize()
	}
	return creds, nil
}

// fileExists is a plain stat check; any error other than a clean "exists"
// counts as absent.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// writeFileAtomic replaces path by writing a temp file in the same
// directory and renaming it over the target, so a crash mid-write never
// leaves a truncated config behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hopman-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %v", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %v", path, err)
	}
	return nil
}
