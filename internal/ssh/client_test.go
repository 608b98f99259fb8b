// internal/ssh/client_test.go

package ssh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hopman/internal/config"
	"hopman/internal/models"
)

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	paths := config.Paths{Root: t.TempDir()}
	require.NoError(t, paths.EnsureDirs())
	return paths
}

func TestAddr(t *testing.T) {
	cred := &models.Credential{Host: "example.com", Port: 2222}
	require.Equal(t, "example.com:2222", addr(cred))

	cred.Port = 0
	require.Equal(t, "example.com:22", addr(cred))

	cred.Host = "::1"
	cred.Port = 22
	require.Equal(t, "[::1]:22", addr(cred))
}

func TestCheckKnownHost(t *testing.T) {
	paths := testPaths(t)
	client := NewClient(paths)
	cred := &models.Credential{Host: "example.com", Port: 22}

	t.Run("missing file requires verification", func(t *testing.T) {
		err := client.checkKnownHost(cred)
		var verr *HostKeyVerificationRequired
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "example.com", verr.Host)
		require.Equal(t, 22, verr.Port)
	})

	t.Run("unknown host requires verification", func(t *testing.T) {
		line := "[other.example.com]:22 ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAA...\n"
		require.NoError(t, os.WriteFile(paths.KnownHostsPath(), []byte(line), 0600))

		err := client.checkKnownHost(cred)
		var verr *HostKeyVerificationRequired
		require.ErrorAs(t, err, &verr)
	})

	t.Run("recorded host passes", func(t *testing.T) {
		line := "[example.com]:22 ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAA...\n"
		require.NoError(t, os.WriteFile(paths.KnownHostsPath(), []byte(line), 0600))
		require.NoError(t, client.checkKnownHost(cred))
	})
}

func TestAuthMethods(t *testing.T) {
	paths := testPaths(t)
	client := NewClient(paths)

	t.Run("password auth uses the secret", func(t *testing.T) {
		cred := &models.Credential{Auth: models.AuthPassword}
		methods, err := client.authMethods(cred, "s3cret")
		require.NoError(t, err)
		require.Len(t, methods, 1)
	})

	t.Run("none auth yields no methods", func(t *testing.T) {
		cred := &models.Credential{Auth: models.AuthNone}
		methods, err := client.authMethods(cred, "")
		require.NoError(t, err)
		require.Empty(t, methods)
	})

	t.Run("missing key file fails", func(t *testing.T) {
		cred := &models.Credential{Auth: models.AuthPrivateKey, PrivateKeyID: "nope_key"}
		_, err := client.authMethods(cred, "")
		require.Error(t, err)
	})

	t.Run("garbage key material fails", func(t *testing.T) {
		cred := &models.Credential{Auth: models.AuthPrivateKey, PrivateKeyID: "bad_key"}
		keyPath := filepath.Join(paths.KeysDir(), "bad_key")
		require.NoError(t, os.WriteFile(keyPath, []byte("not a pem"), 0600))

		_, err := client.authMethods(cred, "")
		require.Error(t, err)
	})
}

func TestTransferDisconnectedOperations(t *testing.T) {
	transfer := NewTransfer(testPaths(t))

	require.False(t, transfer.IsConnected())
	require.NoError(t, transfer.Disconnect())

	_, err := transfer.ListRemoteFiles("/tmp")
	require.Error(t, err)
	require.Error(t, transfer.MkdirRemote("/tmp/x"))
	require.Error(t, transfer.RemoveRemote("/tmp/x"))
}
