// internal/ui/views/prompt.go

package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hopman/internal/ui"
	"hopman/internal/ui/messages"
)

// passphrasePrompt asks for the vault master passphrase before the main
// view loads. Esc skips the vault: hops remain usable for key-based and
// agent connections, password auth is just unavailable.
type passphrasePrompt struct {
	input  textinput.Model
	errMsg string
}

func NewPassphrasePrompt() tea.Model {
	input := textinput.New()
	input.Placeholder = "vault passphrase"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'
	input.Focus()

	return &passphrasePrompt{input: input}
}

func (p *passphrasePrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p *passphrasePrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return p, tea.Quit
		case "esc":
			return p, func() tea.Msg { return messages.PassphraseEnteredMsg("") }
		case "enter":
			value := p.input.Value()
			if value == "" {
				p.errMsg = "passphrase cannot be empty (esc to skip the vault)"
				return p, nil
			}
			return p, func() tea.Msg { return messages.PassphraseEnteredMsg(value) }
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *passphrasePrompt) View() string {
	view := ui.TitleStyle.Render("hopman") + "\n\n" +
		ui.DescriptionStyle.Render("Unlock the password vault") + "\n\n" +
		ui.InputStyle.Render(p.input.View()) + "\n"
	if p.errMsg != "" {
		view += "\n" + ui.ErrorStyle.Render(p.errMsg) + "\n"
	}
	view += "\n" + ui.HelpStyle.Render(fmt.Sprintf("enter confirm%sesc skip%sctrl+c quit", sep, sep))
	return view
}

const sep = " • "
