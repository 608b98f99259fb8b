// internal/hop/vault.go

package hop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"hopman/internal/config"
	"hopman/internal/crypto"
)

// Vault stores hop passwords, encrypted, in a JSON sidecar keyed by
// credential id. Neither the legacy JSON store nor the config file ever
// carries a password: they only record the auth mode.
type Vault struct {
	path   string
	cipher *crypto.Cipher
	// entries maps credential id to hex-encoded ciphertext.
	entries map[string]string
}

// OpenVault loads the sidecar, creating an empty vault when the file does
// not exist yet.
func OpenVault(path string, cipher *crypto.Cipher) (*Vault, error) {
	v := &Vault{path: path, cipher: cipher, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read vault: %v", err)
	}
	if err := json.Unmarshal(data, &v.entries); err != nil {
		return nil, fmt.Errorf("failed to parse vault: %v", err)
	}
	return v, nil
}

// Set encrypts and stores the password for a credential id.
func (v *Vault) Set(id, password string) error {
	if id == "" {
		return errors.New("credential id cannot be empty")
	}
	encrypted, err := v.cipher.Encrypt(password)
	if err != nil {
		return err
	}
	v.entries[id] = encrypted
	return v.save()
}

// Get returns the decrypted password for a credential id.
func (v *Vault) Get(id string) (string, error) {
	encrypted, ok := v.entries[id]
	if !ok {
		return "", fmt.Errorf("no password stored for credential %s", id)
	}
	return v.cipher.Decrypt(encrypted)
}

// Has reports whether a password is stored for the id.
func (v *Vault) Has(id string) bool {
	_, ok := v.entries[id]
	return ok
}

// Delete removes the password for a credential id, if present.
func (v *Vault) Delete(id string) error {
	if _, ok := v.entries[id]; !ok {
		return nil
	}
	delete(v.entries, id)
	return v.save()
}

func (v *Vault) save() error {
	data, err := json.MarshalIndent(v.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %v", err)
	}
	if err := writeFileAtomic(v.path, data, config.DefaultFilePerms); err != nil {
		return fmt.Errorf("failed to write vault: %v", err)
	}
	return nil
}
