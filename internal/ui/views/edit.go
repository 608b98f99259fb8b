// internal/ui/views/edit.go

package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hopman/internal/models"
	"hopman/internal/ui"
)

// Field order in the edit form.
const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldUsername
	fieldAuth
	fieldKeyID
	fieldDefaultPath
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name", "Host", "Port", "Username", "Auth (password/privateKey/none)", "Private key id", "Default path",
}

type editView struct {
	model   *ui.Model
	inputs  [fieldCount]textinput.Model
	focused int
	errMsg  string
}

func NewEditView(model *ui.Model) tea.Model {
	v := &editView{model: model}

	for i := range v.inputs {
		input := textinput.New()
		input.Placeholder = fieldLabels[i]
		v.inputs[i] = input
	}
	v.inputs[fieldPort].SetValue(strconv.Itoa(models.DefaultPort))
	v.inputs[fieldAuth].SetValue(models.AuthPassword)

	if id := model.EditingID(); id != "" {
		if cred := model.Service().GetCredential(id); cred != nil {
			v.inputs[fieldName].SetValue(cred.Name)
			v.inputs[fieldHost].SetValue(cred.Host)
			v.inputs[fieldPort].SetValue(strconv.Itoa(cred.Port))
			v.inputs[fieldUsername].SetValue(cred.Username)
			v.inputs[fieldAuth].SetValue(cred.Auth)
			v.inputs[fieldKeyID].SetValue(cred.PrivateKeyID)
			v.inputs[fieldDefaultPath].SetValue(cred.DefaultPath)
		}
	}

	v.inputs[fieldName].Focus()
	return v
}

func (v *editView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *editView) focusField(i int) tea.Cmd {
	v.inputs[v.focused].Blur()
	v.focused = (i + fieldCount) % fieldCount
	return v.inputs[v.focused].Focus()
}

func (v *editView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			v.model.SetQuitting(true)
			return v, tea.Quit

		case "esc":
			v.model.SetActiveView(ui.ViewList)
			return v, nil

		case "tab", "down":
			return v, v.focusField(v.focused + 1)

		case "shift+tab", "up":
			return v, v.focusField(v.focused - 1)

		case "enter":
			if v.focused < fieldCount-1 {
				return v, v.focusField(v.focused + 1)
			}
			return v.save()
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focused], cmd = v.inputs[v.focused].Update(msg)
	return v, cmd
}

func (v *editView) save() (tea.Model, tea.Cmd) {
	port, err := strconv.Atoi(strings.TrimSpace(v.inputs[fieldPort].Value()))
	if err != nil || port <= 0 {
		v.errMsg = "port must be a positive number"
		return v, v.focusField(fieldPort)
	}

	name := strings.TrimSpace(v.inputs[fieldName].Value())
	host := strings.TrimSpace(v.inputs[fieldHost].Value())
	username := strings.TrimSpace(v.inputs[fieldUsername].Value())
	auth := strings.TrimSpace(v.inputs[fieldAuth].Value())
	keyID := strings.TrimSpace(v.inputs[fieldKeyID].Value())
	defaultPath := strings.TrimSpace(v.inputs[fieldDefaultPath].Value())

	svc := v.model.Service()
	if id := v.model.EditingID(); id != "" {
		_, err = svc.UpdateCredential(id, models.CredentialPatch{
			Name:         &name,
			Host:         &host,
			Port:         &port,
			Username:     &username,
			Auth:         &auth,
			PrivateKeyID: &keyID,
			DefaultPath:  &defaultPath,
		})
	} else {
		_, err = svc.CreateCredential(models.Credential{
			Name:         name,
			Host:         host,
			Port:         port,
			Username:     username,
			Auth:         auth,
			PrivateKeyID: keyID,
			DefaultPath:  defaultPath,
		})
	}
	if err != nil {
		v.errMsg = err.Error()
		return v, nil
	}

	v.model.SetStatus(fmt.Sprintf("saved %s", name), false)
	v.model.SetActiveView(ui.ViewList)
	return v, nil
}

func (v *editView) View() string {
	title := "Add hop"
	if v.model.EditingID() != "" {
		title = "Edit hop"
	}

	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(title) + "\n\n")
	for i := range v.inputs {
		label := fmt.Sprintf("%-34s", fieldLabels[i])
		if i == v.focused {
			b.WriteString(ui.SelectedItemStyle.Render(label) + v.inputs[i].View() + "\n")
		} else {
			b.WriteString(ui.ItemStyle.Render(label) + v.inputs[i].View() + "\n")
		}
	}
	b.WriteString("\n")
	if v.errMsg != "" {
		b.WriteString(ui.ErrorStyle.Render(v.errMsg) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render("tab next" + sep + "enter save" + sep + "esc back"))
	return b.String()
}
