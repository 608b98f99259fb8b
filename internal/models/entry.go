// internal/models/entry.go

package models

import "strings"

// ConfigEntry is one Host block of the hop config file. The first five
// fields map onto standard SSH directives; the Meta* fields carry the
// application data smuggled through a single "# icotes-meta: {...}"
// comment inside the block. Entries without metadata are fully valid and
// round-trip without the comment.
type ConfigEntry struct {
	Host         string
	HostName     string
	User         string
	Port         int
	IdentityFile string

	MetaID          string
	MetaAuth        string
	MetaDefaultPath string
	MetaCreatedAt   string
	MetaUpdatedAt   string
}

// HasMeta reports whether any metadata field is set, i.e. whether the
// writer must emit an icotes-meta comment for this entry.
func (e *ConfigEntry) HasMeta() bool {
	return e.MetaID != "" || e.MetaAuth != "" || e.MetaDefaultPath != "" ||
		e.MetaCreatedAt != "" || e.MetaUpdatedAt != ""
}

// KeyID returns the filename component of the identity file, which doubles
// as the private key id in the flat credential form. Returns "" when no
// identity file is set. IdentityFile is stored verbatim, so both POSIX and
// Windows separators must be handled here.
func (e *ConfigEntry) KeyID() string {
	if e.IdentityFile == "" {
		return ""
	}
	path := e.IdentityFile
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// ToCredential flattens the entry into the credential form consumed by
// callers of the hop service. HostName falls back to the host alias when
// absent; the auth mode falls back to a guess from the identity file when
// no metadata recorded it.
func (e *ConfigEntry) ToCredential() Credential {
	host := e.HostName
	if host == "" {
		host = e.Host
	}
	auth := e.MetaAuth
	if auth == "" {
		if e.IdentityFile != "" {
			auth = AuthPrivateKey
		} else {
			auth = AuthPassword
		}
	}
	port := e.Port
	if port <= 0 {
		port = DefaultPort
	}
	return Credential{
		ID:           e.MetaID,
		Name:         e.Host,
		Host:         host,
		Port:         port,
		Username:     e.User,
		Auth:         auth,
		PrivateKeyID: e.KeyID(),
		DefaultPath:  e.MetaDefaultPath,
		CreatedAt:    e.MetaCreatedAt,
		UpdatedAt:    e.MetaUpdatedAt,
	}
}
