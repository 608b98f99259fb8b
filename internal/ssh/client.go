// internal/ssh/client.go

package ssh

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"

	"hopman/internal/config"
	"hopman/internal/models"
)

const connectTimeout = 10 * time.Second

// Client connects to hops using credentials resolved by the hop service.
// Host keys are verified against the application's own known_hosts file,
// never the user's ~/.ssh/known_hosts.
type Client struct {
	paths       config.Paths
	currentCred *models.Credential
	session     *Session
}

func NewClient(paths config.Paths) *Client {
	return &Client{paths: paths}
}

// HostKeyVerificationRequired is returned when the hop's key is not in the
// known_hosts file yet; the UI prompts before calling
// ConnectWithAcceptedKey.
type HostKeyVerificationRequired struct {
	Host string
	Port int
}

func (e *HostKeyVerificationRequired) Error() string {
	return "host key verification required"
}

// addr formats the dial target, falling back to the default port.
func addr(cred *models.Credential) string {
	port := cred.Port
	if port <= 0 {
		port = models.DefaultPort
	}
	return net.JoinHostPort(cred.Host, strconv.Itoa(port))
}

// checkKnownHost reports whether the hop already has an entry in our
// known_hosts file.
func (c *Client) checkKnownHost(cred *models.Credential) error {
	knownHostsPath := c.paths.KnownHostsPath()
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		return &HostKeyVerificationRequired{Host: cred.Host, Port: cred.Port}
	}

	content, err := os.ReadFile(knownHostsPath)
	if err != nil {
		return err
	}

	hostMarker := fmt.Sprintf("[%s]:%d", cred.Host, cred.Port)
	for _, line := range strings.Split(string(content), "\n") {
		if strings.Contains(line, hostMarker) {
			return nil
		}
	}
	return &HostKeyVerificationRequired{Host: cred.Host, Port: cred.Port}
}

// FetchHostKeyFingerprint performs a throwaway handshake to obtain the
// hop's key fingerprint for display in the acceptance prompt.
func FetchHostKeyFingerprint(cred *models.Credential) (string, error) {
	var result string
	cfg := &ssh.ClientConfig{
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			result = ssh.FingerprintSHA256(key)
			return nil
		},
		Timeout: connectTimeout,
	}

	conn, err := ssh.Dial("tcp", addr(cred), cfg)
	if err != nil && result != "" {
		// Auth failure is expected; the handshake already gave us the key.
		return result, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get host key: %v", err)
	}
	defer conn.Close()

	if result == "" {
		return "", fmt.Errorf("no host key received")
	}
	return result, nil
}

// fetchAndSaveHostKey captures the hop's public key through a handshake
// and records it in the known_hosts file, replacing any previous entry for
// the same address.
func (c *Client) fetchAndSaveHostKey(cred *models.Credential) error {
	knownHostsPath := c.paths.KnownHostsPath()
	if err := os.MkdirAll(filepath.Dir(knownHostsPath), config.DefaultDirPerms); err != nil {
		return fmt.Errorf("failed to create directory for known_hosts: %v", err)
	}

	hostKeyChan := make(chan ssh.PublicKey, 1)
	cfg := &ssh.ClientConfig{
		User: cred.Username,
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			hostKeyChan <- key
			return nil
		},
		Timeout: connectTimeout,
	}

	// No auth methods on purpose: we expect the dial to fail after the
	// handshake, which is all we need.
	ssh.Dial("tcp", addr(cred), cfg)
	close(hostKeyChan)

	var hostKey ssh.PublicKey
	select {
	case hostKey = <-hostKeyChan:
	default:
		return fmt.Errorf("could not retrieve host key from server")
	}

	hostMarker := fmt.Sprintf("[%s]:%d", cred.Host, cred.Port)
	authorizedKey := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(hostKey)))
	newKeyLine := fmt.Sprintf("%s %s", hostMarker, authorizedKey)

	var keptLines []string
	if content, err := os.ReadFile(knownHostsPath); err == nil {
		scanner := bufio.NewScanner(strings.NewReader(string(content)))
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !strings.Contains(line, hostMarker) {
				keptLines = append(keptLines, line)
			}
		}
	}

	content := strings.Join(append(keptLines, newKeyLine), "\n") + "\n"
	if err := os.WriteFile(knownHostsPath, []byte(content), config.DefaultFilePerms); err != nil {
		return fmt.Errorf("failed to write known_hosts file: %v", err)
	}
	return nil
}

// authMethods builds the auth list for a credential. For privateKey auth
// the key file is looked up in the keys directory by its id; for password
// auth the secret is the vault-decrypted password. AuthNone dials with an
// empty list.
func (c *Client) authMethods(cred *models.Credential, secret string) ([]ssh.AuthMethod, error) {
	switch cred.Auth {
	case models.AuthPrivateKey:
		keyPath := filepath.Join(c.paths.KeysDir(), cred.PrivateKeyID)
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %v", err)
		}
		var signer ssh.Signer
		if secret != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(secret))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key: %v", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case models.AuthNone:
		return nil, nil
	default:
		return []ssh.AuthMethod{ssh.Password(secret)}, nil
	}
}

// Connect dials the hop and opens a session. The secret is the password
// for password auth or the key passphrase (possibly empty) for key auth.
// Returns HostKeyVerificationRequired when the hop key is unknown.
func (c *Client) Connect(cred *models.Credential, secret string) error {
	if err := c.checkKnownHost(cred); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		auth, err := c.authMethods(cred, secret)
		if err != nil {
			errChan <- err
			return
		}

		hostKeyCallback, err := knownhosts.New(c.paths.KnownHostsPath())
		if err != nil {
			errChan <- fmt.Errorf("failed to create host key callback: %v", err)
			return
		}

		cfg := &ssh.ClientConfig{
			User:            cred.Username,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         connectTimeout,
		}

		client, err := ssh.Dial("tcp", addr(cred), cfg)
		if err != nil {
			errChan <- fmt.Errorf("failed to connect: %v", err)
			return
		}

		session, err := NewSession(client)
		if err != nil {
			client.Close()
			errChan <- fmt.Errorf("failed to create session: %v", err)
			return
		}

		c.session = session
		c.currentCred = cred
		errChan <- nil
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("connection failed: %v", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection timeout: host is unreachable")
	}
}

// ConnectWithAcceptedKey records the hop's current host key and retries
// the connection. Called after the user accepted the fingerprint.
func (c *Client) ConnectWithAcceptedKey(cred *models.Credential, secret string) error {
	if err := c.fetchAndSaveHostKey(cred); err != nil {
		return fmt.Errorf("failed to fetch and save host key: %v", err)
	}
	return c.Connect(cred, secret)
}

func (c *Client) IsConnected() bool {
	if c.session != nil {
		return c.session.State() == StateConnected
	}
	return c.currentCred != nil
}

// Disconnect closes the session and restores the local terminal if the
// session left it in raw mode.
func (c *Client) Disconnect() {
	if c.session != nil {
		if state := c.session.OriginalTermState(); state != nil {
			if err := term.Restore(int(os.Stdin.Fd()), state); err != nil {
				fmt.Fprintf(os.Stderr, "failed to restore terminal state: %v\n", err)
			}
		}
		c.session.Close()
		c.session = nil
	}
	c.currentCred = nil
}

func (c *Client) CurrentCredential() *models.Credential {
	return c.currentCred
}

func (c *Client) Session() *Session {
	return c.session
}
