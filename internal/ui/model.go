// internal/ui/model.go

package ui

import (
	"hopman/internal/crypto"
	"hopman/internal/hop"
	"hopman/internal/models"
	"hopman/internal/ssh"

	tea "github.com/charmbracelet/bubbletea"
)

// View identifies the active screen.
type View int

const (
	ViewList View = iota
	ViewEdit
)

// Model is the state shared between views and the program loop. It is
// created once in main and passed by reference; views read and mutate it
// through accessors rather than keeping their own copies.
type Model struct {
	service *hop.Service
	vault   *hop.Vault
	cipher  *crypto.Cipher

	sshClient  *ssh.Client
	activeView View
	editingID  string // empty means the edit view creates a new hop

	program    *tea.Program
	termWidth  int
	termHeight int
	quitting   bool

	status      string
	statusIsErr bool
}

func NewModel(service *hop.Service) *Model {
	return &Model{
		service:    service,
		activeView: ViewList,
		termWidth:  80,
		termHeight: 24,
	}
}

func (m *Model) Service() *hop.Service { return m.service }

func (m *Model) SetVault(v *hop.Vault)        { m.vault = v }
func (m *Model) Vault() *hop.Vault            { return m.vault }
func (m *Model) SetCipher(c *crypto.Cipher)   { m.cipher = c }
func (m *Model) Cipher() *crypto.Cipher       { return m.cipher }
func (m *Model) SetProgram(p *tea.Program)    { m.program = p }
func (m *Model) Program() *tea.Program        { return m.program }
func (m *Model) SetSSHClient(c *ssh.Client)   { m.sshClient = c }
func (m *Model) SSHClient() *ssh.Client       { return m.sshClient }
func (m *Model) ActiveView() View             { return m.activeView }
func (m *Model) SetActiveView(v View)         { m.activeView = v }
func (m *Model) EditingID() string            { return m.editingID }
func (m *Model) SetEditingID(id string)       { m.editingID = id }
func (m *Model) IsQuitting() bool             { return m.quitting }
func (m *Model) SetQuitting(quitting bool)    { m.quitting = quitting }
func (m *Model) TerminalSize() (int, int)     { return m.termWidth, m.termHeight }
func (m *Model) SetTerminalSize(w, h int)     { m.termWidth, m.termHeight = w, h }
func (m *Model) Status() (string, bool)       { return m.status, m.statusIsErr }
func (m *Model) SetStatus(s string, err bool) { m.status, m.statusIsErr = s, err }

// Credentials is a convenience pass-through for views.
func (m *Model) Credentials() []models.Credential {
	return m.service.ListCredentials()
}
