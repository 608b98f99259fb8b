package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigEntry_KeyID(t *testing.T) {
	t.Run("empty identity file returns empty id", func(t *testing.T) {
		e := ConfigEntry{}
		assert.Equal(t, "", e.KeyID())
	})

	t.Run("posix path", func(t *testing.T) {
		e := ConfigEntry{IdentityFile: "/home/u/.config/hopman/keys/prod_key"}
		assert.Equal(t, "prod_key", e.KeyID())
	})

	t.Run("windows path", func(t *testing.T) {
		e := ConfigEntry{IdentityFile: `C:\Users\dev\keys\dev_key`}
		assert.Equal(t, "dev_key", e.KeyID())
	})

	t.Run("bare filename", func(t *testing.T) {
		e := ConfigEntry{IdentityFile: "loose_key"}
		assert.Equal(t, "loose_key", e.KeyID())
	})
}

func TestConfigEntry_HasMeta(t *testing.T) {
	assert.False(t, (&ConfigEntry{Host: "h", HostName: "x", Port: 22}).HasMeta())
	assert.True(t, (&ConfigEntry{MetaID: "a"}).HasMeta())
	assert.True(t, (&ConfigEntry{MetaUpdatedAt: "2024-01-01T00:00:00Z"}).HasMeta())
}

func TestCredential_Validate(t *testing.T) {
	valid := Credential{Name: "n", Host: "h", Auth: AuthPassword}
	require.NoError(t, valid.Validate())

	t.Run("missing name", func(t *testing.T) {
		c := Credential{Host: "h", Auth: AuthPassword}
		assert.Error(t, c.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		c := Credential{Name: "n", Auth: AuthPassword}
		assert.Error(t, c.Validate())
	})

	t.Run("unknown auth mode", func(t *testing.T) {
		c := Credential{Name: "n", Host: "h", Auth: "carrier-pigeon"}
		assert.Error(t, c.Validate())
	})

	t.Run("privateKey auth requires key id", func(t *testing.T) {
		c := Credential{Name: "n", Host: "h", Auth: AuthPrivateKey}
		assert.Error(t, c.Validate())
		c.PrivateKeyID = "n_key"
		assert.NoError(t, c.Validate())
	})
}

func TestCredential_NormalizeAndApply(t *testing.T) {
	c := Credential{Name: "n", Host: "h"}
	c.Normalize()
	assert.Equal(t, DefaultPort, c.Port)
	assert.Equal(t, AuthPassword, c.Auth)

	newHost := "h2.example.com"
	newPort := 2222
	c.Apply(CredentialPatch{Host: &newHost, Port: &newPort})
	assert.Equal(t, "h2.example.com", c.Host)
	assert.Equal(t, 2222, c.Port)
	assert.Equal(t, "n", c.Name)
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "Production_Server", SafeFileName("Production Server"))
	assert.Equal(t, "db_01", SafeFileName("db-01"))
	assert.Equal(t, "plain", SafeFileName("plain"))
}
