// ABOUTME: Sign-in form for the login route
// ABOUTME: Collects username and password with huh and hands them to the app

package authform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nilmcc/blogctl/internal/tui/icons"
	"github.com/nilmcc/blogctl/internal/tui/styles"
)

// SubmitMsg carries the entered credentials
type SubmitMsg struct {
	Username string
	Password string
}

// CancelledMsg is sent when the form is dismissed
type CancelledMsg struct{}

// AuthForm is the sign-in screen
type AuthForm struct {
	username  string
	password  string
	googleURL string
	err       string
	busy      bool
	form      *huh.Form
}

// New creates the form. googleURL, when set, is shown as the Google sign-in link.
func New(googleURL string) *AuthForm {
	a := &AuthForm{googleURL: googleURL}
	a.form = a.buildForm()
	return a
}

func (a *AuthForm) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&a.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&a.password).
				Validate(required("password")),
		).Title(icons.Lock.String()+" Sign in"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (a *AuthForm) Init() tea.Cmd {
	return a.form.Init()
}

// Update implements tea.Model
func (a *AuthForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return a, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.Start()
		submit := SubmitMsg{Username: strings.TrimSpace(a.username), Password: a.password}
		return a, func() tea.Msg { return submit }
	}
	return a, cmd
}

// Start marks a sign-in as in flight
func (a *AuthForm) Start() {
	a.busy = true
	a.err = ""
}

// Fail shows msg and reopens the form with the username kept
func (a *AuthForm) Fail(msg string) tea.Cmd {
	a.err = msg
	a.busy = false
	a.password = ""
	a.form = a.buildForm()
	return a.form.Init()
}

// Busy reports whether a sign-in is in flight
func (a *AuthForm) Busy() bool {
	return a.busy
}

// View implements tea.Model
func (a *AuthForm) View() string {
	var sb strings.Builder

	if a.busy {
		sb.WriteString(styles.Meta.Render("Signing in..."))
		return sb.String()
	}

	sb.WriteString(a.form.View())

	if a.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(a.err))
	}
	if a.googleURL != "" {
		sb.WriteString("\n\n")
		sb.WriteString(styles.Subtitle.Render("Or sign in with Google in a browser:"))
		sb.WriteString("\n")
		sb.WriteString(styles.ValueStyle.Render(a.googleURL))
	}
	return sb.String()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
