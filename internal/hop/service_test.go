package hop

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hopman/internal/models"
)

func TestService_EmptyWorkspace(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())

	assert.Equal(t, FormatJSON, svc.ConfigFormat())
	assert.Empty(t, svc.ListCredentials())
}

func TestService_MigratesOnStartup(t *testing.T) {
	// Scenario: one JSON record and no config file. Construction alone
	// must produce the config file and serve the record.
	p := tempPaths(t)
	writeLegacy(t, p, `[{"id":"hop1","name":"Production Server","host":"prod.example.com","port":22,"username":"deploy","auth":"password"}]`)

	svc := NewService(p, zap.NewNop())

	assert.Equal(t, FormatConfig, svc.ConfigFormat())

	content, err := os.ReadFile(p.ConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(content), "Host Production Server")
	assert.Contains(t, string(content), "HostName prod.example.com")
	assert.Contains(t, string(content), "User deploy")

	creds := svc.ListCredentials()
	require.Len(t, creds, 1)
	assert.Equal(t, "Production Server", creds[0].Name)
}

func TestService_FormatPromotionOnFirstWrite(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())
	require.Equal(t, FormatJSON, svc.ConfigFormat())

	_, err := svc.CreateCredential(models.Credential{
		Name: "First", Host: "first.example.com", Auth: models.AuthPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, FormatConfig, svc.ConfigFormat())

	// A fresh service against the same directory sees the promoted format.
	svc2 := NewService(p, zap.NewNop())
	assert.Equal(t, FormatConfig, svc2.ConfigFormat())
	require.Len(t, svc2.ListCredentials(), 1)
	assert.Equal(t, "First", svc2.ListCredentials()[0].Name)
}

func TestService_CreateCredential(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())

	t.Run("assigns id and timestamps", func(t *testing.T) {
		created, err := svc.CreateCredential(models.Credential{
			Name: "Stamped", Host: "s.example.com",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.NotEmpty(t, created.CreatedAt)
		assert.NotEmpty(t, created.UpdatedAt)
		assert.Equal(t, models.DefaultPort, created.Port)
		assert.Equal(t, models.AuthPassword, created.Auth)
	})

	t.Run("keeps caller-supplied id", func(t *testing.T) {
		created, err := svc.CreateCredential(models.Credential{
			ID: "my-id", Name: "Named", Host: "n.example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "my-id", created.ID)
	})

	t.Run("rejects invalid credential", func(t *testing.T) {
		_, err := svc.CreateCredential(models.Credential{Host: "no-name.example.com"})
		assert.Error(t, err)
	})

	t.Run("preserves file order", func(t *testing.T) {
		creds := svc.ListCredentials()
		require.Len(t, creds, 2)
		assert.Equal(t, "Stamped", creds[0].Name)
		assert.Equal(t, "Named", creds[1].Name)
	})
}

func TestService_UpdateCredential(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())
	created, err := svc.CreateCredential(models.Credential{
		Name: "Before", Host: "before.example.com",
	})
	require.NoError(t, err)

	t.Run("applies patch and persists", func(t *testing.T) {
		newName := "After"
		newPort := 2222
		updated, err := svc.UpdateCredential(created.ID, models.CredentialPatch{
			Name: &newName, Port: &newPort,
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "After", updated.Name)
		assert.Equal(t, 2222, updated.Port)
		assert.Equal(t, "before.example.com", updated.Host)

		svc2 := NewService(p, zap.NewNop())
		creds := svc2.ListCredentials()
		require.Len(t, creds, 1)
		assert.Equal(t, "After", creds[0].Name)
		assert.Equal(t, 2222, creds[0].Port)
	})

	t.Run("unknown id returns nil without error", func(t *testing.T) {
		name := "nope"
		updated, err := svc.UpdateCredential("not-there", models.CredentialPatch{Name: &name})
		assert.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestService_DeleteCredential(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())
	a, err := svc.CreateCredential(models.Credential{Name: "A", Host: "a.example.com"})
	require.NoError(t, err)
	_, err = svc.CreateCredential(models.Credential{Name: "B", Host: "b.example.com"})
	require.NoError(t, err)

	ok, err := svc.DeleteCredential(a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, svc.ListCredentials(), 1)
	assert.Equal(t, "B", svc.ListCredentials()[0].Name)

	ok, err = svc.DeleteCredential("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_GetCredential(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())
	created, err := svc.CreateCredential(models.Credential{Name: "G", Host: "g.example.com"})
	require.NoError(t, err)

	found := svc.GetCredential(created.ID)
	require.NotNil(t, found)
	assert.Equal(t, "G", found.Name)

	assert.Nil(t, svc.GetCredential("missing"))
}

func TestService_ConfigPreferredOverLingeringJSON(t *testing.T) {
	// Once a config file exists the stale JSON must never win, even when
	// both are present.
	p := tempPaths(t)
	writeLegacy(t, p, `[{"id":"old","name":"Old","host":"old.example.com","port":22,"username":"o","auth":"password"}]`)

	svc := NewService(p, zap.NewNop())
	require.Equal(t, FormatConfig, svc.ConfigFormat())

	_, err := svc.CreateCredential(models.Credential{Name: "New", Host: "new.example.com"})
	require.NoError(t, err)

	svc2 := NewService(p, zap.NewNop())
	assert.Equal(t, FormatConfig, svc2.ConfigFormat())
	names := []string{}
	for _, c := range svc2.ListCredentials() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Old", "New"}, names)
}

func TestService_ListReturnsCopy(t *testing.T) {
	p := tempPaths(t)
	svc := NewService(p, zap.NewNop())
	_, err := svc.CreateCredential(models.Credential{Name: "Immutable", Host: "i.example.com"})
	require.NoError(t, err)

	creds := svc.ListCredentials()
	creds[0].Name = "Mutated"

	assert.Equal(t, "Immutable", svc.ListCredentials()[0].Name)
}

func TestService_HandEditedConfigSurvives(t *testing.T) {
	// Users and VS Code may add directives we do not know. They must not
	// break loading, and unknown entries simply flow through as
	// credentials without metadata.
	p := tempPaths(t)
	handEdited := "Host byhand\n" +
		"    HostName byhand.example.com\n" +
		"    ProxyJump bastion\n" +
		"    ForwardAgent yes\n"
	require.NoError(t, os.WriteFile(p.ConfigPath(), []byte(handEdited), 0600))

	svc := NewService(p, zap.NewNop())
	require.Equal(t, FormatConfig, svc.ConfigFormat())
	creds := svc.ListCredentials()
	require.Len(t, creds, 1)
	assert.Equal(t, "byhand", creds[0].Name)
	assert.Equal(t, "byhand.example.com", creds[0].Host)
	assert.Equal(t, 22, creds[0].Port)
}
