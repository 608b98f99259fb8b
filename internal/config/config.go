// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultConfigDir = ".config/hopman"

	// ConfigFileName has no extension on purpose: ssh and VS Code
	// Remote-SSH expect a file literally named "config".
	ConfigFileName     = "config"
	LegacyCredsName    = "hops.json"
	VaultFileName      = "passwords.json"
	KeysDirName        = "keys"
	LogFileName        = "hopman.log"
	KnownHostsFileName = "known_hosts"

	DefaultFilePerms = 0600
	DefaultDirPerms  = 0700
)

// Paths locates everything the hop store keeps on disk. All files live
// under a single root directory supplied by the embedding application (or
// defaulted to ~/.config/hopman).
type Paths struct {
	Root string
}

// DefaultPaths returns paths rooted in the user's home directory.
func DefaultPaths() (Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("could not get home directory: %v", err)
	}
	return Paths{Root: filepath.Join(homeDir, DefaultConfigDir)}, nil
}

// ConfigPath is the authoritative SSH-config-format credential store.
func (p Paths) ConfigPath() string {
	return filepath.Join(p.Root, ConfigFileName)
}

// LegacyCredsPath is the original JSON credential array, kept read-only as
// a migration source.
func (p Paths) LegacyCredsPath() string {
	return filepath.Join(p.Root, LegacyCredsName)
}

// VaultPath holds the encrypted password sidecar.
func (p Paths) VaultPath() string {
	return filepath.Join(p.Root, VaultFileName)
}

// KeysDir holds private key files referenced by IdentityFile directives.
func (p Paths) KeysDir() string {
	return filepath.Join(p.Root, KeysDirName)
}

func (p Paths) KnownHostsPath() string {
	return filepath.Join(p.Root, KnownHostsFileName)
}

func (p Paths) LogPath() string {
	return filepath.Join(p.Root, LogFileName)
}

// EnsureDirs creates the root and keys directories. Key material gets
// restrictive permissions.
func (p Paths) EnsureDirs() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}
	if err := os.MkdirAll(p.KeysDir(), DefaultDirPerms); err != nil {
		return fmt.Errorf("failed to create keys directory: %v", err)
	}
	return nil
}
