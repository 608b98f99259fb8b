// internal/hop/migration.go

package hop

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"hopman/internal/config"
	"hopman/internal/models"
	"hopman/internal/sshcfg"
)

// MigrationResult reports the outcome of one migration run. It is logged
// and returned, never persisted.
type MigrationResult struct {
	Success             bool
	CredentialsMigrated int
	KeysRenamed         int
	Message             string
	Warnings            []string
}

// ShouldMigrate reports whether the one-time JSON-to-config migration is
// due: the legacy JSON store exists and no config file does. Once a config
// file is present migration never runs again, even if the stale JSON
// lingers or the config was hand-edited since.
func ShouldMigrate(paths config.Paths) bool {
	return fileExists(paths.LegacyCredsPath()) && !fileExists(paths.ConfigPath())
}

// MigrateCredentialsToConfig converts the legacy JSON credential array
// into the config-file format. Private key files stored under opaque ids
// are renamed to "<name>_key" so lookups stay readable and stable across
// id changes; a missing key file only produces a warning. The original
// JSON is backed up with a timestamped .bak suffix and left in place for
// manual inspection - it just stops being authoritative.
//
// Corrupt JSON is a graceful no-op: the result reports success with zero
// credentials so service startup is never blocked by migration.
func MigrateCredentialsToConfig(paths config.Paths, logger *zap.Logger) MigrationResult {
	result := MigrationResult{}

	creds, err := readLegacyCredentials(paths.LegacyCredsPath())
	if err != nil {
		logger.Warn("skipping migration, legacy store unreadable", zap.Error(err))
		result.Success = true
		result.Message = fmt.Sprintf("legacy credentials unreadable, nothing migrated: %v", err)
		return result
	}

	entries := make([]models.ConfigEntry, 0, len(creds))
	for _, cred := range creds {
		if cred.Auth == models.AuthPrivateKey && cred.PrivateKeyID != "" {
			renamed, warn := renameKeyFile(paths.KeysDir(), &cred)
			if renamed {
				result.KeysRenamed++
			}
			if warn != "" {
				result.Warnings = append(result.Warnings, warn)
				logger.Warn("migration warning", zap.String("hop", cred.Name), zap.String("warning", warn))
			}
		}
		entries = append(entries, sshcfg.CredentialToConfigEntry(cred, paths.KeysDir()))
		result.CredentialsMigrated++
	}

	text := sshcfg.Generate(entries)
	if err := writeFileAtomic(paths.ConfigPath(), []byte(text), config.DefaultFilePerms); err != nil {
		result.Message = fmt.Sprintf("failed to write config file: %v", err)
		return result
	}

	if err := backupLegacyFile(paths.LegacyCredsPath()); err != nil {
		// The migration itself succeeded; a failed backup is only a warning.
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not back up legacy file: %v", err))
		logger.Warn("could not back up legacy file", zap.Error(err))
	}

	result.Success = true
	result.Message = fmt.Sprintf("migrated %d credentials, renamed %d key files",
		result.CredentialsMigrated, result.KeysRenamed)
	logger.Info("migrated legacy credentials to config format",
		zap.Int("credentials", result.CredentialsMigrated),
		zap.Int("keysRenamed", result.KeysRenamed),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

// renameKeyFile moves a key file from its opaque-id name to the stable
// "<name>_key" convention and updates the credential's key id to match.
// Returns whether a file was renamed and a warning string when the
// expected source file is missing.
func renameKeyFile(keysDir string, cred *models.Credential) (bool, string) {
	newID := models.SafeFileName(cred.Name) + "_key"
	if cred.PrivateKeyID == newID {
		return false, ""
	}

	oldPath := filepath.Join(keysDir, cred.PrivateKeyID)
	newPath := filepath.Join(keysDir, newID)

	if !fileExists(oldPath) {
		if fileExists(newPath) {
			// Already renamed by an earlier partial run.
			cred.PrivateKeyID = newID
			return false, ""
		}
		return false, fmt.Sprintf("key file for hop %q not found: %s", cred.Name, oldPath)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return false, fmt.Sprintf("could not rename key file for hop %q: %v", cred.Name, err)
	}
	cred.PrivateKeyID = newID
	return true, ""
}

// backupLegacyFile writes a timestamped copy next to the original. The
// original is never deleted.
func backupLegacyFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading legacy file: %v", err)
	}
	backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().UTC().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, content, config.DefaultFilePerms); err != nil {
		return fmt.Errorf("error creating backup file: %v", err)
	}
	return nil
}
