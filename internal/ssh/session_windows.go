// internal/ssh/session_windows.go
//go:build windows

package ssh

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// SessionState tracks the lifecycle of an interactive session.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateConnected
	StateError
)

// Session is one interactive shell on a connected hop. Windows has no
// SIGWINCH, so terminal size is polled instead of signalled.
type Session struct {
	client            *ssh.Client
	session           *ssh.Session
	state             SessionState
	lastError         error
	termWidth         int
	termHeight        int
	keepAlive         time.Duration
	stopChan          chan struct{}
	stateMutex        sync.RWMutex
	originalTermState *term.State
}

// NewSession opens a session on the client and sizes it to the current
// terminal.
func NewSession(client *ssh.Client) (*Session, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	return &Session{
		client:     client,
		session:    session,
		state:      StateConnecting,
		termWidth:  width,
		termHeight: height,
		keepAlive:  30 * time.Second,
		stopChan:   make(chan struct{}),
	}, nil
}

// ConfigureTerminal requests a PTY with standard interactive modes.
func (s *Session) ConfigureTerminal(termType string) error {
	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := s.session.RequestPty(termType, s.termHeight, s.termWidth, modes); err != nil {
		return fmt.Errorf("failed to request PTY: %v", err)
	}
	return nil
}

// StartShell runs the interactive shell and blocks until it exits.
func (s *Session) StartShell() error {
	s.session.Stdin = os.Stdin
	s.session.Stdout = os.Stdout
	s.session.Stderr = os.Stderr

	var err error
	s.originalTermState, err = term.GetState(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to get terminal state: %v", err)
	}

	go s.handleSignals()
	go s.pollTerminalSize()
	if s.keepAlive > 0 {
		go s.keepAliveLoop()
	}

	rawState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to set raw terminal: %v", err)
	}
	defer func(raw *term.State) {
		s.setState(StateDisconnected)
		if err := term.Restore(int(os.Stdin.Fd()), raw); err != nil {
			fmt.Fprintf(os.Stderr, "failed to restore terminal state: %v\n", err)
		}
	}(rawState)

	if err := s.session.Shell(); err != nil {
		return fmt.Errorf("failed to start shell: %v", err)
	}
	s.setState(StateConnected)

	if err := s.session.Wait(); err != nil {
		errStr := err.Error()
		if !strings.Contains(errStr, "exit status") &&
			!strings.Contains(errStr, "signal: terminated") &&
			!strings.Contains(errStr, "signal: interrupt") {
			return fmt.Errorf("session ended with error: %v", err)
		}
	}
	return nil
}

func (s *Session) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			s.Close()
			return
		case <-s.stopChan:
			return
		}
	}
}

// pollTerminalSize substitutes for SIGWINCH on Windows.
func (s *Session) pollTerminalSize() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.updateTerminalSize(); err != nil {
				s.setError(err)
			}
		case <-s.stopChan:
			return
		}
	}
}

func (s *Session) updateTerminalSize() error {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return fmt.Errorf("failed to get terminal size: %v", err)
	}

	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	if width == s.termWidth && height == s.termHeight {
		return nil
	}
	if err := s.session.WindowChange(height, width); err != nil {
		return fmt.Errorf("failed to update window size: %v", err)
	}
	s.termWidth = width
	s.termHeight = height
	return nil
}

func (s *Session) keepAliveLoop() {
	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil)
			if err != nil {
				s.setError(fmt.Errorf("keepalive failed: %v", err))
				s.Close()
				return
			}
		case <-s.stopChan:
			return
		}
	}
}

// Close tears down the session and its client connection.
func (s *Session) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	var errs []string
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("session close error: %v", err))
		}
		s.session = nil
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("client close error: %v", err))
		}
		s.client = nil
	}
	s.setState(StateDisconnected)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Session) setState(state SessionState) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.state = state
}

func (s *Session) setError(err error) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.lastError = err
	s.state = StateError
}

func (s *Session) State() SessionState {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.state
}

func (s *Session) LastError() error {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.lastError
}

// SetKeepAlive adjusts the keepalive interval for the next StartShell.
func (s *Session) SetKeepAlive(d time.Duration) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.keepAlive = d
}

func (s *Session) OriginalTermState() *term.State {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.originalTermState
}
