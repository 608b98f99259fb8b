package messages

// PassphraseEnteredMsg carries the vault master passphrase from the
// initial prompt.
type PassphraseEnteredMsg string

// HostKeyVerificationMsg asks the user to accept an unknown host key.
type HostKeyVerificationMsg struct {
	Host        string
	Port        int
	Fingerprint string
}

type HostKeyResponseMsg bool

// ConnectRequestedMsg tells the program loop to hand the terminal to an
// SSH session for the selected credential.
type ConnectRequestedMsg struct {
	CredentialID string
}

type SessionEndedMsg struct{}
type ReloadListMsg struct{}
