// internal/sshcfg/writer.go

package sshcfg

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"hopman/internal/models"
)

// Header emitted at the top of every generated file, including an empty
// one. The second line warns hand-editors away from the metadata comments.
const (
	headerTitle = "# Hop configuration - managed by hopman"
	headerNote  = "# Compatible with OpenSSH and VS Code Remote-SSH. Keep metadata comments intact."
)

// Generate serializes entries into config text in input order. Output is
// parseable by Parse without loss: every field of every entry survives the
// round trip. Directive lines use a fixed order and 4-space indentation;
// Port is written even when it equals the default so a reader never has to
// guess. Identity file paths are emitted verbatim, including Windows-style
// separators and spaces.
func Generate(entries []models.ConfigEntry) string {
	var b strings.Builder
	b.WriteString(headerTitle + "\n")
	b.WriteString(headerNote + "\n")

	for _, e := range entries {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Host %s\n", e.Host)
		if e.HostName != "" {
			fmt.Fprintf(&b, "    HostName %s\n", e.HostName)
		}
		if e.User != "" {
			fmt.Fprintf(&b, "    User %s\n", e.User)
		}
		port := e.Port
		if port <= 0 {
			port = models.DefaultPort
		}
		fmt.Fprintf(&b, "    Port %d\n", port)
		if e.IdentityFile != "" {
			fmt.Fprintf(&b, "    IdentityFile %s\n", e.IdentityFile)
		}
		if e.HasMeta() {
			meta, err := json.Marshal(metaPayload{
				ID:          e.MetaID,
				Auth:        e.MetaAuth,
				DefaultPath: e.MetaDefaultPath,
				CreatedAt:   e.MetaCreatedAt,
				UpdatedAt:   e.MetaUpdatedAt,
			})
			if err == nil {
				fmt.Fprintf(&b, "    # %s %s\n", metaPrefix, meta)
			}
		}
	}

	return b.String()
}

// CredentialToConfigEntry maps a flat credential onto a config entry. For
// privateKey auth the identity file is derived from the key id under the
// given keys directory; forward slashes are used regardless of platform so
// generated files stay portable.
func CredentialToConfigEntry(c models.Credential, keysDir string) models.ConfigEntry {
	entry := models.ConfigEntry{
		Host:            c.Name,
		HostName:        c.Host,
		User:            c.Username,
		Port:            c.Port,
		MetaID:          c.ID,
		MetaAuth:        c.Auth,
		MetaDefaultPath: c.DefaultPath,
		MetaCreatedAt:   c.CreatedAt,
		MetaUpdatedAt:   c.UpdatedAt,
	}
	if entry.Port <= 0 {
		entry.Port = models.DefaultPort
	}
	if c.Auth == models.AuthPrivateKey && c.PrivateKeyID != "" {
		entry.IdentityFile = path.Join(strings.ReplaceAll(keysDir, "\\", "/"), c.PrivateKeyID)
	}
	return entry
}
