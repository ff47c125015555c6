// Package portal is the top-level view switch between the login shell and
// the dashboard.
package portal

import (
	"log/slog"

	"github.com/alkime/healthvoice/internal/login"
)

// View names what the portal is showing.
type View int

const (
	ViewLogin View = iota
	ViewDashboard
)

func (v View) String() string {
	if v == ViewDashboard {
		return "dashboard"
	}

	return "login"
}

// ShellFactory builds the login shell. onLoginSuccess must be passed through
// to login.New.
type ShellFactory func(onLoginSuccess func()) *login.Shell

// Portal holds the logged-in flag and owns the login shell while it is shown.
type Portal struct {
	newShell ShellFactory
	logger   *slog.Logger

	loggedIn bool
	shell    *login.Shell
	onChange func(View)
}

// New creates a portal. onChange, if non-nil, is called after the view
// switches.
func New(newShell ShellFactory, logger *slog.Logger, onChange func(View)) *Portal {
	if logger == nil {
		logger = slog.Default()
	}

	return &Portal{
		newShell: newShell,
		logger:   logger.With("component", "portal"),
		onChange: onChange,
	}
}

// Mount builds and mounts the login shell.
func (p *Portal) Mount() {
	if p.loggedIn || p.shell != nil {
		return
	}

	p.shell = p.newShell(p.loginSucceeded)
	p.shell.Mount()
}

// LoggedIn reports whether the dashboard is showing.
func (p *Portal) LoggedIn() bool {
	return p.loggedIn
}

// View returns the current view.
func (p *Portal) View() View {
	if p.loggedIn {
		return ViewDashboard
	}

	return ViewLogin
}

// Shell returns the login shell, or nil once logged in.
func (p *Portal) Shell() *login.Shell {
	return p.shell
}

// Teardown releases the login shell.
func (p *Portal) Teardown() {
	if p.shell != nil {
		p.shell.Teardown()
		p.shell = nil
	}
}

func (p *Portal) loginSucceeded() {
	if p.loggedIn {
		return
	}

	p.loggedIn = true
	p.Teardown()
	p.logger.Info("showing dashboard")

	if p.onChange != nil {
		p.onChange(ViewDashboard)
	}
}
