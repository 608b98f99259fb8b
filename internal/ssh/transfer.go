// internal/ssh/transfer.go

package ssh

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	scp "github.com/bramvdbogaerde/go-scp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"hopman/internal/config"
	"hopman/internal/models"
)

// Transfer moves files to and from a hop. Directory operations (listing,
// stat, mkdir, remove) go through SFTP; bulk file copies use SCP, which
// most servers serve faster for single files.
type Transfer struct {
	paths       config.Paths
	sshClient   *ssh.Client
	sftpClient  *sftp.Client
	currentCred *models.Credential
	connected   bool
}

// RemoteFile is one entry of a remote directory listing.
type RemoteFile struct {
	Name    string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
}

func NewTransfer(paths config.Paths) *Transfer {
	return &Transfer{paths: paths}
}

// Connect dials the hop and opens the SFTP subsystem. Host keys are
// verified against the application known_hosts file, same as interactive
// connections.
func (t *Transfer) Connect(cred *models.Credential, secret string) error {
	if t.connected {
		return nil
	}

	client := NewClient(t.paths)
	auth, err := client.authMethods(cred, secret)
	if err != nil {
		return err
	}
	hostKeyCallback, err := knownhosts.New(t.paths.KnownHostsPath())
	if err != nil {
		return fmt.Errorf("failed to create host key callback: %v", err)
	}

	cfg := &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         connectTimeout,
	}

	sshClient, err := ssh.Dial("tcp", addr(cred), cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %v", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return fmt.Errorf("failed to create SFTP client: %v", err)
	}

	t.sshClient = sshClient
	t.sftpClient = sftpClient
	t.currentCred = cred
	t.connected = true
	return nil
}

// Disconnect closes the SFTP subsystem and the underlying connection.
func (t *Transfer) Disconnect() error {
	if !t.connected {
		return nil
	}
	if t.sftpClient != nil {
		t.sftpClient.Close()
		t.sftpClient = nil
	}
	if t.sshClient != nil {
		t.sshClient.Close()
		t.sshClient = nil
	}
	t.currentCred = nil
	t.connected = false
	return nil
}

func (t *Transfer) IsConnected() bool {
	return t.connected
}

// ListRemoteFiles lists a remote directory, directories first.
func (t *Transfer) ListRemoteFiles(remotePath string) ([]RemoteFile, error) {
	if !t.connected {
		return nil, fmt.Errorf("transfer connection is not active")
	}

	entries, err := t.sftpClient.ReadDir(remotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote directory: %v", err)
	}

	files := make([]RemoteFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, RemoteFile{
			Name:    e.Name(),
			Size:    e.Size(),
			Mode:    e.Mode(),
			ModTime: e.ModTime(),
			IsDir:   e.IsDir(),
		})
	}
	return files, nil
}

// UploadFile copies a local file to the hop over SCP.
func (t *Transfer) UploadFile(ctx context.Context, localPath, remotePath string) error {
	if !t.connected {
		return fmt.Errorf("transfer connection is not active")
	}

	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %v", err)
	}
	defer localFile.Close()

	scpClient, err := scp.NewClientBySSH(t.sshClient)
	if err != nil {
		return fmt.Errorf("failed to create SCP client: %v", err)
	}
	defer scpClient.Close()

	if err := scpClient.CopyFromFile(ctx, *localFile, remotePath, "0644"); err != nil {
		return fmt.Errorf("failed to upload %s: %v", path.Base(remotePath), err)
	}
	return nil
}

// DownloadFile copies a remote file from the hop over SCP.
func (t *Transfer) DownloadFile(ctx context.Context, remotePath, localPath string) error {
	if !t.connected {
		return fmt.Errorf("transfer connection is not active")
	}

	localFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %v", err)
	}
	defer localFile.Close()

	scpClient, err := scp.NewClientBySSH(t.sshClient)
	if err != nil {
		return fmt.Errorf("failed to create SCP client: %v", err)
	}
	defer scpClient.Close()

	if err := scpClient.CopyFromRemote(ctx, localFile, remotePath); err != nil {
		return fmt.Errorf("failed to download %s: %v", path.Base(remotePath), err)
	}
	return nil
}

// MkdirRemote creates a remote directory, parents included.
func (t *Transfer) MkdirRemote(remotePath string) error {
	if !t.connected {
		return fmt.Errorf("transfer connection is not active")
	}
	if err := t.sftpClient.MkdirAll(remotePath); err != nil {
		return fmt.Errorf("failed to create remote directory: %v", err)
	}
	return nil
}

// RemoveRemote deletes a remote file or empty directory.
func (t *Transfer) RemoveRemote(remotePath string) error {
	if !t.connected {
		return fmt.Errorf("transfer connection is not active")
	}
	if err := t.sftpClient.Remove(remotePath); err != nil {
		return fmt.Errorf("failed to remove remote path: %v", err)
	}
	return nil
}
