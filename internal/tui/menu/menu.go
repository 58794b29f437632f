// ABOUTME: Navigation menu for the TUI
// ABOUTME: Offers the destinations the current session may visit as a huh select

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nilmcc/blogctl/internal/tui/styles"
)

// Non-path actions
const (
	ActionLogout = "logout"
	ActionQuit   = "quit"
)

// SelectedMsg is sent when a destination is chosen. Target is a route path
// or one of the Action constants.
type SelectedMsg struct {
	Target string
}

// CancelledMsg is sent when the menu is dismissed
type CancelledMsg struct{}

type option struct {
	label   string
	target  string
	enabled bool
}

// Menu is the destination picker
type Menu struct {
	options  []option
	selected string
	form     *huh.Form
}

// New builds the menu for a session. Entries the session may not use are
// shown as unavailable rather than hidden.
func New(authenticated, admin bool) *Menu {
	m := &Menu{
		options: []option{
			{label: "Latest posts", target: "/", enabled: true},
			{label: "Search", target: "/search", enabled: true},
			{label: "New post", target: "/posts/create", enabled: authenticated},
			{label: "Admin overview", target: "/admin", enabled: admin},
			{label: "About", target: "/about", enabled: true},
		},
		selected: "/",
	}
	if authenticated {
		m.options = append(m.options, option{label: "Log out", target: ActionLogout, enabled: true})
	} else {
		m.options = append(m.options, option{label: "Log in", target: "/login", enabled: true})
	}
	m.options = append(m.options, option{label: "Quit", target: ActionQuit, enabled: true})
	m.form = m.buildForm()
	return m
}

func (m *Menu) buildForm() *huh.Form {
	var opts []huh.Option[string]
	for _, opt := range m.options {
		label := opt.label
		if !opt.enabled {
			label += " (sign-in required)"
		}
		opts = append(opts, huh.NewOption(label, opt.target))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Go to").
				Options(opts...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		target := m.selected
		// Unavailable entries still route; the guard decides where they land
		return m, func() tea.Msg { return SelectedMsg{Target: target} }
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// Targets returns the menu's destinations in display order
func (m *Menu) Targets() []string {
	targets := make([]string, len(m.options))
	for i, opt := range m.options {
		targets[i] = opt.target
	}
	return targets
}
