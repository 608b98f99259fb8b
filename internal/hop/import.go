// internal/hop/import.go

package hop

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kevinburke/ssh_config"

	"hopman/internal/models"
)

// ImportOpenSSHConfig reads a standard ssh_config file (the user's
// ~/.ssh/config, typically) and converts its concrete Host blocks into
// hop credentials with fresh ids. Wildcard patterns and negations are
// skipped: they are matching rules, not hosts. The identity file keeps
// whatever path the user wrote; its basename becomes the private key id.
func ImportOpenSSHConfig(path string) ([]models.Credential, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ssh config: %v", err)
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh config: %v", err)
	}

	var creds []models.Credential
	for _, host := range cfg.Hosts {
		alias := concreteAlias(host)
		if alias == "" {
			continue
		}

		entry := models.ConfigEntry{Host: alias, Port: models.DefaultPort}
		for _, node := range host.Nodes {
			kv, ok := node.(*ssh_config.KV)
			if !ok {
				continue
			}
			switch strings.ToLower(kv.Key) {
			case "hostname":
				entry.HostName = kv.Value
			case "user":
				entry.User = kv.Value
			case "port":
				if port, err := strconv.Atoi(kv.Value); err == nil {
					entry.Port = port
				}
			case "identityfile":
				entry.IdentityFile = kv.Value
			}
		}

		cred := entry.ToCredential()
		cred.ID = uuid.NewString()
		creds = append(creds, cred)
	}
	return creds, nil
}

// concreteAlias returns the first pattern of the block that names a real
// host, or "" when the block only holds wildcard rules.
func concreteAlias(host *ssh_config.Host) string {
	for _, pattern := range host.Patterns {
		p := pattern.String()
		if p == "" || strings.ContainsAny(p, "*?!") {
			continue
		}
		return p
	}
	return ""
}
