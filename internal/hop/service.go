// internal/hop/service.go
//
// Package hop is the single entry point for hop credential storage. It
// decides which on-disk format is authoritative, runs the one-time JSON
// migration, and serves CRUD over credentials so no other component ever
// touches the files directly.

package hop

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hopman/internal/config"
	"hopman/internal/models"
	"hopman/internal/sshcfg"
)

// Authoritative storage formats. FormatConfig wins whenever the config
// file exists; FormatJSON covers both the legacy store and the empty
// first-run state.
const (
	FormatJSON   = "json"
	FormatConfig = "config"
)

// Service owns the credential store for one workspace. The authoritative
// format is decided once, at construction, and never re-detected: flipping
// sources mid-session because a file appeared or vanished underneath us is
// exactly the failure mode this layer exists to prevent. The first write
// promotes the store to config format permanently; the legacy JSON then
// stays behind as a frozen artifact.
//
// Calls are synchronous and the service holds no locks. Construction is
// expected to complete before credential operations begin, and concurrent
// processes are only guarded by migration being convergent (the second
// run is a no-op because the config file already exists).
type Service struct {
	paths  config.Paths
	logger *zap.Logger
	format string
	creds  []models.Credential
}

// NewService loads the store and runs migration when due. It never fails
// on migration or read errors: a service that comes up with an empty
// credential list beats one that refuses to start because a user
// hand-edited a file.
func NewService(paths config.Paths, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{paths: paths, logger: logger}

	if err := paths.EnsureDirs(); err != nil {
		logger.Warn("could not prepare hop directories", zap.Error(err))
	}

	if ShouldMigrate(paths) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("migration panicked", zap.Any("panic", r))
				}
			}()
			result := MigrateCredentialsToConfig(paths, logger)
			if !result.Success {
				logger.Error("migration failed", zap.String("message", result.Message))
			}
		}()
	}

	s.detectFormat()
	s.load()
	return s
}

// detectFormat picks the authoritative source: config when present, else
// legacy JSON, else JSON as the empty default.
func (s *Service) detectFormat() {
	switch {
	case fileExists(s.paths.ConfigPath()):
		s.format = FormatConfig
	case fileExists(s.paths.LegacyCredsPath()):
		s.format = FormatJSON
	default:
		s.format = FormatJSON
	}
}

// load reads credentials from the authoritative source into memory. Read
// errors degrade to an empty list.
func (s *Service) load() {
	switch s.format {
	case FormatConfig:
		data, err := os.ReadFile(s.paths.ConfigPath())
		if err != nil {
			s.logger.Warn("could not read config file", zap.Error(err))
			s.creds = nil
			return
		}
		entries := sshcfg.Parse(string(data))
		creds := make([]models.Credential, 0, len(entries))
		for _, e := range entries {
			creds = append(creds, e.ToCredential())
		}
		s.creds = creds
	default:
		creds, err := readLegacyCredentials(s.paths.LegacyCredsPath())
		if err != nil {
			s.logger.Warn("could not read legacy credentials", zap.Error(err))
			creds = nil
		}
		s.creds = creds
	}
}

// ConfigFormat reports which format is authoritative for this instance.
func (s *Service) ConfigFormat() string {
	return s.format
}

// Paths exposes the workspace layout to consumers that need key file or
// known_hosts locations.
func (s *Service) Paths() config.Paths {
	return s.paths
}

// ListCredentials returns all credentials in file order. The slice is a
// copy; mutating it does not touch the store.
func (s *Service) ListCredentials() []models.Credential {
	out := make([]models.Credential, len(s.creds))
	copy(out, s.creds)
	return out
}

// GetCredential returns the credential with the given stable id, or nil.
func (s *Service) GetCredential(id string) *models.Credential {
	for i := range s.creds {
		if s.creds[i].ID == id {
			cred := s.creds[i].Clone()
			return &cred
		}
	}
	return nil
}

// CreateCredential appends a new credential and persists the whole store
// in config format, regardless of the format detected at startup. A fresh
// id and timestamps are assigned when the caller left them empty. Write
// errors propagate: this is an explicit user action and silent loss would
// be worse than a visible failure.
func (s *Service) CreateCredential(cred models.Credential) (*models.Credential, error) {
	cred.Normalize()
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if cred.CreatedAt == "" {
		cred.CreatedAt = now
	}
	if cred.UpdatedAt == "" {
		cred.UpdatedAt = now
	}

	s.creds = append(s.creds, cred)
	if err := s.saveConfig(); err != nil {
		s.creds = s.creds[:len(s.creds)-1]
		return nil, err
	}
	s.logger.Info("created hop credential", zap.String("id", cred.ID), zap.String("name", cred.Name))
	return &cred, nil
}

// UpdateCredential applies the patch to the credential with the given id
// and rewrites the full store in config format. An unknown id returns
// (nil, nil): absence is an expected case, not an error.
func (s *Service) UpdateCredential(id string, patch models.CredentialPatch) (*models.Credential, error) {
	for i := range s.creds {
		if s.creds[i].ID != id {
			continue
		}
		updated := s.creds[i].Clone()
		updated.Apply(patch)
		updated.Normalize()
		if err := updated.Validate(); err != nil {
			return nil, err
		}
		updated.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

		previous := s.creds[i]
		s.creds[i] = updated
		if err := s.saveConfig(); err != nil {
			s.creds[i] = previous
			return nil, err
		}
		s.logger.Info("updated hop credential", zap.String("id", id))
		cred := updated.Clone()
		return &cred, nil
	}
	return nil, nil
}

// DeleteCredential removes the credential with the given id. Returns
// false when the id is unknown.
func (s *Service) DeleteCredential(id string) (bool, error) {
	for i := range s.creds {
		if s.creds[i].ID != id {
			continue
		}
		removed := s.creds[i]
		s.creds = append(s.creds[:i], s.creds[i+1:]...)
		if err := s.saveConfig(); err != nil {
			s.creds = append(s.creds[:i], append([]models.Credential{removed}, s.creds[i:]...)...)
			return false, err
		}
		s.logger.Info("deleted hop credential", zap.String("id", id))
		return true, nil
	}
	return false, nil
}

// ImportFromOpenSSH merges Host blocks from a standard ssh_config file
// into the store and persists. Hosts whose alias already exists are
// skipped. Returns the number of credentials added.
func (s *Service) ImportFromOpenSSH(path string) (int, error) {
	imported, err := ImportOpenSSHConfig(path)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]bool, len(s.creds))
	for _, c := range s.creds {
		existing[c.Name] = true
	}

	before := s.creds
	added := 0
	for _, cred := range imported {
		if existing[cred.Name] {
			continue
		}
		s.creds = append(s.creds, cred)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.saveConfig(); err != nil {
		s.creds = before
		return 0, err
	}
	s.logger.Info("imported hosts from OpenSSH config", zap.String("path", path), zap.Int("added", added))
	return added, nil
}

// saveConfig rewrites the config file from the in-memory list and marks
// config as the authoritative format. This is the one-way promotion: once
// it has run, the legacy JSON is never written again.
func (s *Service) saveConfig() error {
	entries := make([]models.ConfigEntry, 0, len(s.creds))
	for _, cred := range s.creds {
		entries = append(entries, sshcfg.CredentialToConfigEntry(cred, s.paths.KeysDir()))
	}
	text := sshcfg.Generate(entries)
	if err := writeFileAtomic(s.paths.ConfigPath(), []byte(text), config.DefaultFilePerms); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	s.format = FormatConfig
	return nil
}
