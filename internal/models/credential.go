// internal/models/credential.go

package models

import (
	"errors"
	"strings"
	"unicode"
)

// Auth modes stored on a credential. The zero value is not valid; callers
// that omit the mode get AuthPassword from Normalize.
const (
	AuthPassword   = "password"
	AuthPrivateKey = "privateKey"
	AuthNone       = "none"
)

// DefaultPort is used whenever a credential or config entry carries no
// usable port value.
const DefaultPort = 22

// Credential is one hop record in its flat form: the shape stored in the
// legacy JSON array and exchanged with callers of the hop service. The
// authoritative on-disk representation is the config file; see ConfigEntry.
type Credential struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Username     string `json:"username"`
	Auth         string `json:"auth"`
	PrivateKeyID string `json:"privateKeyId,omitempty"`
	DefaultPath  string `json:"defaultPath,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// CredentialPatch carries partial changes for an update. Nil fields are
// left untouched on the target credential.
type CredentialPatch struct {
	Name         *string
	Host         *string
	Port         *int
	Username     *string
	Auth         *string
	PrivateKeyID *string
	DefaultPath  *string
}

// Validate checks the fields a caller must supply before a credential can
// be persisted.
func (c *Credential) Validate() error {
	if c.Name == "" {
		return errors.New("name cannot be empty")
	}
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	switch c.Auth {
	case AuthPassword, AuthNone:
	case AuthPrivateKey:
		if c.PrivateKeyID == "" {
			return errors.New("privateKeyId is required for privateKey auth")
		}
	default:
		return errors.New("auth must be one of password, privateKey, none")
	}
	return nil
}

// Normalize fills defaults for fields the caller may leave unset.
func (c *Credential) Normalize() {
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.Auth == "" {
		c.Auth = AuthPassword
	}
}

// Apply copies the non-nil fields of the patch onto the credential.
func (c *Credential) Apply(p CredentialPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Host != nil {
		c.Host = *p.Host
	}
	if p.Port != nil {
		c.Port = *p.Port
	}
	if p.Username != nil {
		c.Username = *p.Username
	}
	if p.Auth != nil {
		c.Auth = *p.Auth
	}
	if p.PrivateKeyID != nil {
		c.PrivateKeyID = *p.PrivateKeyID
	}
	if p.DefaultPath != nil {
		c.DefaultPath = *p.DefaultPath
	}
}

// Clone returns an independent copy of the credential.
func (c *Credential) Clone() Credential {
	return *c
}

// SafeFileName reduces a display name to a string usable as a key file
// name: letters, digits and underscores only.
func SafeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			return r
		}
		return '_'
	}, name)
}
