// internal/ui/views/list.go

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hopman/internal/models"
	"hopman/internal/ssh"
	"hopman/internal/ui"
)

// listMode switches the bottom of the list view between browsing and the
// small inline prompts (delete confirm, password entry, host key accept).
type listMode int

const (
	modeBrowse listMode = iota
	modeConfirmDelete
	modeSetPassword
	modeAcceptHostKey
)

type connectErrMsg string
type connectedMsg struct{}
type hostKeyPromptMsg struct {
	cred        models.Credential
	fingerprint string
}

type listView struct {
	model         *ui.Model
	creds         []models.Credential
	selectedIndex int
	mode          listMode
	passwordInput textinput.Model
	pendingCred   *models.Credential
	fingerprint   string
	errMsg        string
	status        string
	connecting    bool
}

func NewListView(model *ui.Model) tea.Model {
	input := textinput.New()
	input.Placeholder = "password"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'

	return &listView{
		model:         model,
		creds:         model.Credentials(),
		passwordInput: input,
	}
}

func (v *listView) Init() tea.Cmd {
	return nil
}

func (v *listView) reload() {
	v.creds = v.model.Credentials()
	if v.selectedIndex >= len(v.creds) {
		v.selectedIndex = len(v.creds) - 1
	}
	if v.selectedIndex < 0 {
		v.selectedIndex = 0
	}
}

func (v *listView) selected() *models.Credential {
	if len(v.creds) == 0 || v.selectedIndex >= len(v.creds) {
		return nil
	}
	cred := v.creds[v.selectedIndex]
	return &cred
}

// resolveSecret fetches the connection secret for a credential: the vault
// password for password auth, nothing for key and none auth.
func (v *listView) resolveSecret(cred *models.Credential) (string, error) {
	if cred.Auth != models.AuthPassword {
		return "", nil
	}
	vault := v.model.Vault()
	if vault == nil {
		return "", fmt.Errorf("vault is locked; restart and enter the passphrase")
	}
	if !vault.Has(cred.ID) {
		return "", fmt.Errorf("no password stored for %s (press p to set one)", cred.Name)
	}
	return vault.Get(cred.ID)
}

// connectCmd dials the hop in the background. Unknown host keys surface
// as a prompt instead of an error.
func (v *listView) connectCmd(cred models.Credential, acceptedKey bool) tea.Cmd {
	return func() tea.Msg {
		secret, err := v.resolveSecret(&cred)
		if err != nil {
			return connectErrMsg(err.Error())
		}

		client := ssh.NewClient(v.model.Service().Paths())
		if acceptedKey {
			err = client.ConnectWithAcceptedKey(&cred, secret)
		} else {
			err = client.Connect(&cred, secret)
		}
		if err != nil {
			if _, ok := err.(*ssh.HostKeyVerificationRequired); ok {
				fingerprint, ferr := ssh.FetchHostKeyFingerprint(&cred)
				if ferr != nil {
					return connectErrMsg(fmt.Sprintf("failed to fetch host key: %v", ferr))
				}
				return hostKeyPromptMsg{cred: cred, fingerprint: fingerprint}
			}
			return connectErrMsg(err.Error())
		}

		v.model.SetSSHClient(client)
		return connectedMsg{}
	}
}

func (v *listView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.model.SetTerminalSize(msg.Width, msg.Height)
		return v, nil

	case connectErrMsg:
		v.connecting = false
		v.errMsg = string(msg)
		return v, nil

	case hostKeyPromptMsg:
		v.connecting = false
		v.mode = modeAcceptHostKey
		cred := msg.cred
		v.pendingCred = &cred
		v.fingerprint = msg.fingerprint
		return v, nil

	case connectedMsg:
		// Hand the terminal over: the program loop runs the shell and
		// restarts the UI afterwards.
		return v, tea.Quit

	case tea.KeyMsg:
		switch v.mode {
		case modeConfirmDelete:
			return v.updateConfirmDelete(msg)
		case modeSetPassword:
			return v.updateSetPassword(msg)
		case modeAcceptHostKey:
			return v.updateAcceptHostKey(msg)
		}
		return v.updateBrowse(msg)
	}

	return v, nil
}

func (v *listView) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.connecting {
		return v, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		v.model.SetQuitting(true)
		return v, tea.Quit

	case "up", "k":
		if len(v.creds) > 0 {
			v.selectedIndex = (v.selectedIndex - 1 + len(v.creds)) % len(v.creds)
			v.errMsg = ""
		}

	case "down", "j":
		if len(v.creds) > 0 {
			v.selectedIndex = (v.selectedIndex + 1) % len(v.creds)
			v.errMsg = ""
		}

	case "a":
		v.model.SetEditingID("")
		v.model.SetActiveView(ui.ViewEdit)

	case "e":
		if cred := v.selected(); cred != nil {
			v.model.SetEditingID(cred.ID)
			v.model.SetActiveView(ui.ViewEdit)
		}

	case "d":
		if v.selected() != nil {
			v.mode = modeConfirmDelete
		}

	case "p":
		if cred := v.selected(); cred != nil {
			if v.model.Vault() == nil {
				v.errMsg = "vault is locked; restart and enter the passphrase"
				return v, nil
			}
			if cred.Auth != models.AuthPassword {
				v.errMsg = fmt.Sprintf("%s does not use password auth", cred.Name)
				return v, nil
			}
			v.mode = modeSetPassword
			v.passwordInput.SetValue("")
			v.passwordInput.Focus()
			return v, textinput.Blink
		}

	case "r":
		v.reload()
		v.status = "reloaded"

	case "c", "enter":
		if cred := v.selected(); cred != nil {
			v.connecting = true
			v.errMsg = ""
			v.status = fmt.Sprintf("connecting to %s...", cred.Name)
			return v, v.connectCmd(*cred, false)
		}
	}

	return v, nil
}

func (v *listView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = modeBrowse
		cred := v.selected()
		if cred == nil {
			return v, nil
		}
		if _, err := v.model.Service().DeleteCredential(cred.ID); err != nil {
			v.errMsg = fmt.Sprintf("failed to delete %s: %v", cred.Name, err)
			return v, nil
		}
		if vault := v.model.Vault(); vault != nil {
			if err := vault.Delete(cred.ID); err != nil {
				v.errMsg = fmt.Sprintf("credential deleted, vault cleanup failed: %v", err)
			}
		}
		v.status = fmt.Sprintf("deleted %s", cred.Name)
		v.reload()
	case "n", "N", "esc":
		v.mode = modeBrowse
	}
	return v, nil
}

func (v *listView) updateSetPassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = modeBrowse
		return v, nil
	case "enter":
		v.mode = modeBrowse
		cred := v.selected()
		if cred == nil {
			return v, nil
		}
		if err := v.model.Vault().Set(cred.ID, v.passwordInput.Value()); err != nil {
			v.errMsg = fmt.Sprintf("failed to store password: %v", err)
			return v, nil
		}
		v.status = fmt.Sprintf("password stored for %s", cred.Name)
		return v, nil
	}

	var cmd tea.Cmd
	v.passwordInput, cmd = v.passwordInput.Update(msg)
	return v, cmd
}

func (v *listView) updateAcceptHostKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = modeBrowse
		if v.pendingCred == nil {
			return v, nil
		}
		cred := *v.pendingCred
		v.pendingCred = nil
		v.connecting = true
		v.status = fmt.Sprintf("connecting to %s...", cred.Name)
		return v, v.connectCmd(cred, true)
	case "n", "N", "esc":
		v.mode = modeBrowse
		v.pendingCred = nil
		v.status = "connection cancelled"
	}
	return v, nil
}

func (v *listView) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("hopman - remote hops") + "\n\n")

	if len(v.creds) == 0 {
		b.WriteString(ui.DescriptionStyle.Render("No hops configured. Press 'a' to add one.") + "\n")
	}

	for i, cred := range v.creds {
		line := fmt.Sprintf("%-24s %s@%s:%d  [%s]", cred.Name, cred.Username, cred.Host, cred.Port, cred.Auth)
		if i == v.selectedIndex {
			b.WriteString(ui.SelectedItemStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(ui.ItemStyle.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")

	switch v.mode {
	case modeConfirmDelete:
		if cred := v.selected(); cred != nil {
			b.WriteString(ui.ErrorStyle.Render(fmt.Sprintf("Delete %s? (y/n)", cred.Name)) + "\n")
		}
	case modeSetPassword:
		b.WriteString(ui.InputStyle.Render(v.passwordInput.View()) + "\n")
		b.WriteString(ui.HelpStyle.Render("enter save"+sep+"esc cancel") + "\n")
	case modeAcceptHostKey:
		if v.pendingCred != nil {
			b.WriteString(fmt.Sprintf("Unknown host key for %s:%d\n", v.pendingCred.Host, v.pendingCred.Port))
			b.WriteString(ui.DescriptionStyle.Render(v.fingerprint) + "\n")
			b.WriteString(ui.ErrorStyle.Render("Trust this host? (y/n)") + "\n")
		}
	default:
		if v.errMsg != "" {
			b.WriteString(ui.ErrorStyle.Render(v.errMsg) + "\n")
		} else if v.status != "" {
			b.WriteString(ui.SuccessStyle.Render(v.status) + "\n")
		}
		b.WriteString(ui.HelpStyle.Render("c connect" + sep + "a add" + sep + "e edit" + sep + "d delete" + sep + "p password" + sep + "q quit"))
	}

	return b.String()
}
