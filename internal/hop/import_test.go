package hop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hopman/internal/models"
)

const sampleOpenSSHConfig = `# personal hosts
Host *
    ServerAliveInterval 60

Host staging
    HostName staging.example.com
    User deploy
    Port 2222
    IdentityFile ~/.ssh/staging_ed25519

Host prod-*
    User deploy

Host db
    HostName 10.1.2.3
`

func TestImportOpenSSHConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte(sampleOpenSSHConfig), 0600))

	creds, err := ImportOpenSSHConfig(path)
	require.NoError(t, err)
	require.Len(t, creds, 2, "wildcard blocks must be skipped")

	staging := creds[0]
	assert.Equal(t, "staging", staging.Name)
	assert.Equal(t, "staging.example.com", staging.Host)
	assert.Equal(t, "deploy", staging.Username)
	assert.Equal(t, 2222, staging.Port)
	assert.Equal(t, models.AuthPrivateKey, staging.Auth)
	assert.Equal(t, "staging_ed25519", staging.PrivateKeyID)
	assert.NotEmpty(t, staging.ID)

	db := creds[1]
	assert.Equal(t, "db", db.Name)
	assert.Equal(t, "10.1.2.3", db.Host)
	assert.Equal(t, 22, db.Port)
	assert.Equal(t, models.AuthPassword, db.Auth)
}

func TestImportOpenSSHConfig_MissingFile(t *testing.T) {
	_, err := ImportOpenSSHConfig(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestService_ImportFromOpenSSH(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())
	_, err := svc.CreateCredential(models.Credential{Name: "db", Host: "already.example.com"})
	require.NoError(t, err)

	srcPath := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(srcPath, []byte(sampleOpenSSHConfig), 0600))

	added, err := svc.ImportFromOpenSSH(srcPath)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "existing alias db must be skipped")

	names := []string{}
	for _, c := range svc.ListCredentials() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"db", "staging"}, names)

	// The import persisted in config format.
	svc2 := NewService(p, zap.NewNop())
	assert.Equal(t, FormatConfig, svc2.ConfigFormat())
	require.Len(t, svc2.ListCredentials(), 2)
}
