package sshcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopman/internal/models"
)

func TestParse_SingleEntry(t *testing.T) {
	text := "Host myserver\n    HostName 192.168.1.100\n    User admin\n    Port 2222\n"

	entries := Parse(text)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "myserver", e.Host)
	assert.Equal(t, "192.168.1.100", e.HostName)
	assert.Equal(t, "admin", e.User)
	assert.Equal(t, 2222, e.Port)
	assert.Empty(t, e.IdentityFile)
	assert.False(t, e.HasMeta())
}

func TestParse_DefaultPort(t *testing.T) {
	t.Run("missing port directive", func(t *testing.T) {
		entries := Parse("Host a\n    HostName a.example.com\n")
		require.Len(t, entries, 1)
		assert.Equal(t, 22, entries[0].Port)
	})

	t.Run("non-numeric port", func(t *testing.T) {
		entries := Parse("Host a\n    Port banana\n")
		require.Len(t, entries, 1)
		assert.Equal(t, 22, entries[0].Port)
	})

	t.Run("empty port value", func(t *testing.T) {
		entries := Parse("Host a\n    Port\n")
		require.Len(t, entries, 1)
		assert.Equal(t, 22, entries[0].Port)
	})
}

func TestParse_Metadata(t *testing.T) {
	t.Run("full metadata comment", func(t *testing.T) {
		text := "Host prod\n" +
			"    HostName prod.example.com\n" +
			`    # icotes-meta: {"id":"hop1","auth":"password","defaultPath":"/srv","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-06-01T00:00:00Z"}` + "\n"

		entries := Parse(text)
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, "hop1", e.MetaID)
		assert.Equal(t, "password", e.MetaAuth)
		assert.Equal(t, "/srv", e.MetaDefaultPath)
		assert.Equal(t, "2024-01-01T00:00:00Z", e.MetaCreatedAt)
		assert.Equal(t, "2024-06-01T00:00:00Z", e.MetaUpdatedAt)
	})

	t.Run("malformed metadata is ignored", func(t *testing.T) {
		text := "Host test\n    # icotes-meta: {invalid json}\n"
		entries := Parse(text)
		require.Len(t, entries, 1)
		assert.Equal(t, "test", entries[0].Host)
		assert.Empty(t, entries[0].MetaID)
	})

	t.Run("first valid metadata comment wins", func(t *testing.T) {
		text := "Host test\n" +
			`    # icotes-meta: {"id":"first"}` + "\n" +
			`    # icotes-meta: {"id":"second"}` + "\n"
		entries := Parse(text)
		require.Len(t, entries, 1)
		assert.Equal(t, "first", entries[0].MetaID)
	})

	t.Run("malformed comment does not consume the first-wins slot", func(t *testing.T) {
		text := "Host test\n" +
			"    # icotes-meta: {broken\n" +
			`    # icotes-meta: {"id":"valid"}` + "\n"
		entries := Parse(text)
		require.Len(t, entries, 1)
		assert.Equal(t, "valid", entries[0].MetaID)
	})

	t.Run("metadata before any host is ignored", func(t *testing.T) {
		text := `# icotes-meta: {"id":"orphan"}` + "\nHost test\n"
		entries := Parse(text)
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].MetaID)
	})
}

func TestParse_Tolerance(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Parse(""))
	})

	t.Run("comments only", func(t *testing.T) {
		assert.Empty(t, Parse("# just a comment\n# another\n"))
	})

	t.Run("unknown directives are skipped", func(t *testing.T) {
		text := "Host jump\n" +
			"    HostName jump.example.com\n" +
			"    ProxyJump bastion\n" +
			"    ForwardAgent yes\n" +
			"    ServerAliveInterval 60\n"
		entries := Parse(text)
		require.Len(t, entries, 1)
		assert.Equal(t, "jump.example.com", entries[0].HostName)
	})

	t.Run("lines before first Host are ignored", func(t *testing.T) {
		text := "ForwardAgent yes\nUser nobody\n\nHost real\n    User admin\n"
		entries := Parse(text)
		require.Len(t, entries, 1)
		assert.Equal(t, "real", entries[0].Host)
		assert.Equal(t, "admin", entries[0].User)
	})

	t.Run("host without value", func(t *testing.T) {
		entries := Parse("Host\n    HostName lost.example.com\n")
		require.Len(t, entries, 1)
		assert.Equal(t, "", entries[0].Host)
		assert.Equal(t, "lost.example.com", entries[0].HostName)
	})

	t.Run("tabs and mixed whitespace", func(t *testing.T) {
		entries := Parse("Host\ttabbed\n\tHostName\t10.0.0.1\n  \t Port \t 2200\n")
		require.Len(t, entries, 1)
		assert.Equal(t, "tabbed", entries[0].Host)
		assert.Equal(t, "10.0.0.1", entries[0].HostName)
		assert.Equal(t, 2200, entries[0].Port)
	})

	t.Run("quoted values are stripped", func(t *testing.T) {
		entries := Parse("Host quoted\n    IdentityFile \"C:\\Users\\dev\\keys\\my key\"\n")
		require.Len(t, entries, 1)
		assert.Equal(t, `C:\Users\dev\keys\my key`, entries[0].IdentityFile)
	})
}

func TestParse_CaseInsensitiveDirectives(t *testing.T) {
	entries := Parse("host lower\n    hostname lower.example.com\n    USER shouty\n    pOrT 2022\n    identityfile /k/id\n")
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "lower", e.Host)
	assert.Equal(t, "lower.example.com", e.HostName)
	assert.Equal(t, "shouty", e.User)
	assert.Equal(t, 2022, e.Port)
	assert.Equal(t, "/k/id", e.IdentityFile)
}

func TestParse_DuplicateDirectiveLastWins(t *testing.T) {
	text := "Host dup\n    HostName first.example.com\n    HostName second.example.com\n    Port 22\n    Port 2222\n"
	entries := Parse(text)
	require.Len(t, entries, 1)
	assert.Equal(t, "second.example.com", entries[0].HostName)
	assert.Equal(t, 2222, entries[0].Port)
}

func TestParse_MultipleEntriesKeepOrder(t *testing.T) {
	text := "Host one\n    HostName 1.example.com\n\nHost two\n    HostName 2.example.com\n\nHost three\n"
	entries := Parse(text)
	require.Len(t, entries, 3)
	assert.Equal(t, "one", entries[0].Host)
	assert.Equal(t, "two", entries[1].Host)
	assert.Equal(t, "three", entries[2].Host)
}

func TestParse_InvalidPortAfterValidKeepsLast(t *testing.T) {
	// An unparseable value is ignored outright, so the previous valid
	// value stands rather than resetting to the default.
	entries := Parse("Host h\n    Port 2222\n    Port oops\n")
	require.Len(t, entries, 1)
	assert.Equal(t, 2222, entries[0].Port)
}

func TestParse_EntryToCredentialFallbacks(t *testing.T) {
	t.Run("hostname falls back to alias", func(t *testing.T) {
		entries := Parse("Host fallback\n    User u\n")
		require.Len(t, entries, 1)
		cred := entries[0].ToCredential()
		assert.Equal(t, "fallback", cred.Host)
		assert.Equal(t, "fallback", cred.Name)
	})

	t.Run("identity file implies privateKey auth", func(t *testing.T) {
		entries := Parse("Host keyed\n    IdentityFile /keys/k1\n")
		require.Len(t, entries, 1)
		cred := entries[0].ToCredential()
		assert.Equal(t, models.AuthPrivateKey, cred.Auth)
		assert.Equal(t, "k1", cred.PrivateKeyID)
	})
}
