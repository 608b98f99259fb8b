package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"hopman/internal/config"
	"hopman/internal/crypto"
	"hopman/internal/hop"
	"hopman/internal/ui"
	"hopman/internal/ui/messages"
	"hopman/internal/ui/views"
)

type programModel struct {
	uiModel     *ui.Model
	currentView tea.Model
	logger      *zap.Logger
	unlocked    bool
	quitting    bool
}

func initialModel(service *hop.Service, logger *zap.Logger) *programModel {
	uiModel := ui.NewModel(service)

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		uiModel.SetTerminalSize(w, h)
	}

	return &programModel{
		uiModel:     uiModel,
		currentView: views.NewPassphrasePrompt(),
		logger:      logger,
	}
}

func (m *programModel) Init() tea.Cmd {
	return m.currentView.Init()
}

func (m *programModel) SetProgram(p *tea.Program) {
	m.uiModel.SetProgram(p)
}

func (m *programModel) updateCurrentView() {
	switch m.uiModel.ActiveView() {
	case ui.ViewEdit:
		m.currentView = views.NewEditView(m.uiModel)
	default:
		m.currentView = views.NewListView(m.uiModel)
		m.uiModel.SetActiveView(ui.ViewList)
	}
}

func (m *programModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.uiModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case messages.PassphraseEnteredMsg:
		if msg != "" {
			cipher := crypto.NewCipher(string(msg))
			vault, err := hop.OpenVault(m.uiModel.Service().Paths().VaultPath(), cipher)
			if err != nil {
				m.logger.Warn("failed to open vault, passwords unavailable", zap.Error(err))
			} else {
				m.uiModel.SetCipher(cipher)
				m.uiModel.SetVault(vault)
			}
		}
		m.unlocked = true
		m.updateCurrentView()
		return m, m.currentView.Init()

	case messages.SessionEndedMsg:
		m.updateCurrentView()
		return m, m.currentView.Init()

	default:
		currentActiveView := m.uiModel.ActiveView()

		var cmd tea.Cmd
		m.currentView, cmd = m.currentView.Update(msg)

		if m.unlocked && currentActiveView != m.uiModel.ActiveView() {
			m.updateCurrentView()
			return m, tea.Batch(cmd, m.currentView.Init())
		}
		return m, cmd
	}
}

func (m *programModel) View() string {
	if m.quitting || m.uiModel.IsQuitting() {
		return "Goodbye!\n"
	}
	return m.currentView.View()
}

// newLogger writes to the log file rather than stderr so log lines do not
// corrupt the alternate-screen UI.
func newLogger(paths config.Paths) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{paths.LogPath()}
	cfg.ErrorOutputPaths = []string{paths.LogPath()}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	paths, err := config.DefaultPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare config directory: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(paths)
	defer logger.Sync()

	service := hop.NewService(paths, logger)

	m := initialModel(service, logger)
	var p *tea.Program

	for {
		p = tea.NewProgram(m, tea.WithAltScreen())
		m.SetProgram(p)

		model, err := p.Run()
		if err != nil {
			if !strings.Contains(err.Error(), "program was killed") &&
				!strings.Contains(err.Error(), "context canceled") {
				fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
				os.Exit(1)
			}
		}

		m = model.(*programModel)
		if m.quitting {
			break
		}

		// A successful connect quits the UI loop with the client set on
		// the shared model; run the shell on the real terminal and then
		// restart the UI.
		sshClient := m.uiModel.SSHClient()
		if sshClient == nil {
			continue
		}
		session := sshClient.Session()
		if session == nil {
			m.uiModel.SetSSHClient(nil)
			continue
		}

		if err := p.ReleaseTerminal(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to release terminal: %v\n", err)
			sshClient.Disconnect()
			m.uiModel.SetSSHClient(nil)
			continue
		}

		if err := session.ConfigureTerminal("xterm-256color"); err != nil {
			fmt.Fprintf(os.Stderr, "failed to configure terminal: %v\n", err)
		} else if err := session.StartShell(); err != nil {
			fmt.Fprintf(os.Stderr, "shell error: %v\n", err)
		}

		cred := sshClient.CurrentCredential()
		if cred != nil {
			logger.Info("session ended", zap.String("hop", cred.Name))
		}
		sshClient.Disconnect()
		m.uiModel.SetSSHClient(nil)
		m.uiModel.SetActiveView(ui.ViewList)
		m.updateCurrentView()

		p.Send(messages.SessionEndedMsg{})
	}
}
