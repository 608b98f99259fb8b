// internal/sshcfg/parser.go
//
// Package sshcfg reads and writes the hop config file. The format is plain
// OpenSSH client config syntax so that the file stays loadable by ssh and
// VS Code Remote-SSH, plus one vendor extension: a "# icotes-meta: {...}"
// comment inside a Host block carrying fields that have no standard
// directive. Standard tools treat the comment as noise; this package
// round-trips it.

package sshcfg

import (
	"encoding/json"
	"strconv"
	"strings"

	"hopman/internal/models"
)

// metaPrefix is the comment marker for embedded metadata. The literal must
// not change: files written by older builds and by the original backend use
// exactly this form.
const metaPrefix = "icotes-meta:"

// metaPayload is the JSON object carried by an icotes-meta comment.
type metaPayload struct {
	ID          string `json:"id,omitempty"`
	Auth        string `json:"auth,omitempty"`
	DefaultPath string `json:"defaultPath,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Parse turns config text into entries, in input order. It never fails:
// the file may be hand-edited or rewritten by tools that know nothing
// about the vendor extension, so unknown directives are skipped, broken
// values fall back to defaults and malformed metadata comments are
// ignored.
//
// Semantics worth naming: a duplicate directive inside one Host block
// overwrites the earlier value (last wins), while a second icotes-meta
// comment under the same block is ignored (first valid one wins). Lines
// before the first Host directive are ignored entirely.
func Parse(text string) []models.ConfigEntry {
	var (
		entries []models.ConfigEntry
		current *models.ConfigEntry
		metaSet bool
	)

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if current == nil || metaSet {
				continue
			}
			comment := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if !strings.HasPrefix(comment, metaPrefix) {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(comment, metaPrefix))
			var meta metaPayload
			if err := json.Unmarshal([]byte(payload), &meta); err != nil {
				// Malformed metadata is treated as an ordinary comment.
				continue
			}
			current.MetaID = meta.ID
			current.MetaAuth = meta.Auth
			current.MetaDefaultPath = meta.DefaultPath
			current.MetaCreatedAt = meta.CreatedAt
			current.MetaUpdatedAt = meta.UpdatedAt
			metaSet = true
			continue
		}

		directive, value := splitDirective(line)
		switch strings.ToLower(directive) {
		case "host":
			flush()
			current = &models.ConfigEntry{Host: value, Port: models.DefaultPort}
			metaSet = false
		case "hostname":
			if current != nil {
				current.HostName = value
			}
		case "user":
			if current != nil {
				current.User = value
			}
		case "port":
			if current == nil {
				continue
			}
			if port, err := strconv.Atoi(value); err == nil {
				current.Port = port
			}
			// Non-numeric port text is ignored; the default (or the last
			// valid value) stands.
		case "identityfile":
			if current != nil {
				current.IdentityFile = value
			}
		default:
			// Unrecognized directive (ProxyJump, ForwardAgent, ...): skip.
		}
	}
	flush()

	return entries
}

// splitDirective separates a config line into its keyword and value.
// Values may be wrapped in double quotes, which are stripped; a keyword
// with no value yields "".
func splitDirective(line string) (string, string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	directive := fields[0]
	value := strings.TrimSpace(strings.TrimPrefix(line, directive))
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}
	return directive, value
}
