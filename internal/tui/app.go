// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Binds one screen to each route and sends every transition through the router

package tui

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/drafts"
	"github.com/nilmcc/blogctl/internal/router"
	"github.com/nilmcc/blogctl/internal/session"
	"github.com/nilmcc/blogctl/internal/tui/authform"
	"github.com/nilmcc/blogctl/internal/tui/dashboard"
	"github.com/nilmcc/blogctl/internal/tui/editor"
	"github.com/nilmcc/blogctl/internal/tui/icons"
	"github.com/nilmcc/blogctl/internal/tui/menu"
	"github.com/nilmcc/blogctl/internal/tui/postlist"
	"github.com/nilmcc/blogctl/internal/tui/postview"
	"github.com/nilmcc/blogctl/internal/tui/styles"
	"github.com/nilmcc/blogctl/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenPosts
	ScreenPost
	ScreenLogin
	ScreenEditor
	ScreenAdmin
	ScreenAbout
	ScreenNotFound
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	pageSize         = 10
)

// Deps are the services the TUI drives
type Deps struct {
	Client        *client.Client
	Session       *session.Store
	Router        *router.Router
	Drafts        *drafts.Store
	GoogleAuthURL string // sign-in link shown on the login screen, optional
	Start         string // initial location, defaults to home
}

// navigatedMsg is sent when the router moved without the app asking,
// e.g. the API client redirecting to login after a 401
type navigatedMsg struct {
	match router.Match
}

// postsLoadedMsg is sent when a post listing is loaded
type postsLoadedMsg struct {
	location string
	page     *client.Page[client.Post]
	err      error
}

// postLoadedMsg is sent when a post and its comments are loaded
type postLoadedMsg struct {
	post     *client.Post
	comments []client.Comment
	err      error
}

// editorLoadedMsg carries everything the editor needs
type editorLoadedMsg struct {
	key        string
	postID     int64
	draft      drafts.Draft
	categories []client.Category
	tags       []client.Tag
	err        error
}

// postSavedMsg is sent when a create or update completes
type postSavedMsg struct {
	key   string
	input client.PostInput
	post  *client.Post
	err   error
}

// overviewLoadedMsg is sent when the admin overview is loaded
type overviewLoadedMsg struct {
	overview *dashboard.Overview
	err      error
}

// loginDoneMsg is sent when a sign-in attempt finishes
type loginDoneMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	client    *client.Client
	session   *session.Store
	router    *router.Router
	drafts    *drafts.Store
	googleURL string
	start     string

	screen     Screen
	prevScreen Screen // restored when the menu is dismissed
	match      router.Match
	afterLogin string // location the guard turned away, revisited after sign-in
	width      int
	height     int
	err        error
	lastUpdate time.Time

	// Taxonomy last loaded for the editor
	categories []client.Category
	tags       []client.Tag

	// Child models
	menu      *menu.Menu
	postList  *postlist.PostList
	postView  *postview.PostView
	authForm  *authform.AuthForm
	editor    *editor.Editor
	dashboard *dashboard.Dashboard
}

// New creates a new TUI application
func New(deps Deps) *App {
	start := deps.Start
	if start == "" {
		start = router.PathHome
	}
	return &App{
		client:    deps.Client,
		session:   deps.Session,
		router:    deps.Router,
		drafts:    deps.Drafts,
		googleURL: deps.GoogleAuthURL,
		start:     start,
		screen:    ScreenPosts,
		postList:  postlist.New("Latest posts", nil),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.router == nil {
		return nil
	}
	return a.navigate(a.start)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Frame uses width-1 to prevent wrapping on some terminals
		a.width = msg.Width - 1
		a.height = msg.Height
		if a.dashboard != nil {
			a.dashboard.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.postView != nil {
			a.postView.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.postList != nil {
			a.postList.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.contentHeight()})
		}
		if a.editor != nil {
			a.editor.SetWidth(a.width)
		}
		return a.forwardToForm(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.screen {
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenPosts:
			return a.updatePosts(msg)
		case ScreenPost:
			return a.updatePost(msg)
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenEditor:
			return a.updateEditor(msg)
		case ScreenAdmin:
			return a.updateAdmin(msg)
		default:
			return a.updateStatic(msg)
		}

	case navigatedMsg:
		if msg.match.String() == a.match.String() {
			// Already entered when the app itself navigated
			return a, nil
		}
		return a, a.enter(msg.match)

	case menu.SelectedMsg:
		a.menu = nil
		switch msg.Target {
		case menu.ActionQuit:
			return a, tea.Quit
		case menu.ActionLogout:
			a.session.Logout()
			return a, a.enter(a.router.CurrentMatch())
		}
		return a, a.navigate(msg.Target)

	case menu.CancelledMsg:
		a.menu = nil
		a.screen = a.prevScreen
		return a, nil

	case postlist.PostSelectedMsg:
		return a, a.navigate(fmt.Sprintf("/post/%d", msg.ID))

	case postlist.SearchMsg:
		return a, a.navigate("/search?q=" + url.QueryEscape(msg.Query))

	case postlist.PageMsg:
		q := url.Values{}
		for k, v := range a.match.Query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(msg.Page))
		return a, a.navigate(a.match.Path + "?" + q.Encode())

	case postlist.CancelledMsg:
		return a, a.back()

	case authform.SubmitMsg:
		return a, a.login(msg.Username, msg.Password)

	case authform.CancelledMsg:
		a.afterLogin = ""
		return a, a.navigate(router.PathHome)

	case loginDoneMsg:
		if msg.err != nil {
			if a.authForm == nil {
				a.authForm = authform.New(a.googleURL)
			}
			return a, a.authForm.Fail(apperr.UserMessage(msg.err, session.MsgLoginFailed))
		}
		next := a.afterLogin
		a.afterLogin = ""
		if next == "" {
			next = router.PathHome
		}
		return a, a.navigate(next)

	case editor.CompleteMsg:
		return a, a.savePost(msg)

	case editor.CancelledMsg:
		return a, a.back()

	case editorLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.categories, a.tags = msg.categories, msg.tags
		a.editor = editor.New(msg.key, msg.postID, msg.draft, a.categories, a.tags, a.drafts)
		a.editor.SetWidth(a.width)
		return a, a.editor.Init()

	case postSavedMsg:
		if msg.err != nil {
			if a.editor == nil {
				a.err = msg.err
				return a, nil
			}
			// Reopen the editor on the autosaved draft
			draft, _ := a.drafts.Get(msg.key)
			a.editor = editor.New(msg.key, msg.post.ID, draft, a.categories, a.tags, a.drafts)
			a.editor.SetWidth(a.width)
			a.editor.SetError(apperr.UserMessage(msg.err, "Could not save the post"))
			return a, a.editor.Init()
		}
		if _, err := a.drafts.Delete(msg.key); err != nil {
			a.err = err
		}
		return a, a.navigate(fmt.Sprintf("/post/%d", msg.post.ID))

	case postsLoadedMsg:
		if msg.location != a.match.String() || a.postList == nil {
			return a, nil
		}
		if msg.err != nil {
			a.postList.SetError(apperr.UserMessage(msg.err, msg.err.Error()))
			return a, nil
		}
		a.postList.SetPage(msg.page)
		a.lastUpdate = time.Now()
		return a, nil

	case postLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.postView = postview.New(msg.post, msg.comments, a.contentWidth(), a.contentHeight())
		a.lastUpdate = time.Now()
		return a, nil

	case overviewLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		if a.dashboard != nil {
			a.dashboard.Update(msg.overview)
		}
		a.lastUpdate = msg.overview.LoadedAt
		return a, nil
	}

	// Forward unknown messages to the active form (needed for huh internals)
	return a.forwardToForm(msg)
}

func (a *App) forwardToForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case a.screen == ScreenMenu && a.menu != nil:
		return a.updateMenu(msg)
	case a.screen == ScreenLogin && a.authForm != nil:
		return a.updateLogin(msg)
	case a.screen == ScreenEditor && a.editor != nil:
		return a.updateEditor(msg)
	}
	return a, nil
}

// globalKey handles keys shared by the browsing screens
func (a *App) globalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "m":
		return a.openMenu(), true
	}
	return nil, false
}

func (a *App) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.menu == nil {
		return a, nil
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updatePosts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.postList == nil {
		return a, nil
	}
	if !a.postList.Searching() {
		if cmd, ok := a.globalKey(msg); ok {
			return a, cmd
		}
		switch msg.String() {
		case "r":
			return a, a.loadPosts(a.match)
		case "c":
			return a, a.navigate("/posts/create")
		}
	}
	model, cmd := a.postList.Update(msg)
	a.postList = model.(*postlist.PostList)
	return a, cmd
}

func (a *App) updatePost(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.globalKey(msg); ok {
		return a, cmd
	}
	switch msg.String() {
	case "b", "esc":
		return a, a.back()
	case "r":
		return a, a.loadPost(a.match.Param("id"))
	case "e":
		return a, a.navigate("/posts/edit/" + a.match.Param("id"))
	}
	if a.postView == nil {
		return a, nil
	}
	model, cmd := a.postView.Update(msg)
	a.postView = model.(*postview.PostView)
	return a, cmd
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.authForm == nil {
		return a, nil
	}
	model, cmd := a.authForm.Update(msg)
	a.authForm = model.(*authform.AuthForm)
	return a, cmd
}

func (a *App) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.editor == nil {
		// Still loading; allow backing out
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			return a, a.back()
		}
		return a, nil
	}
	model, cmd := a.editor.Update(msg)
	a.editor = model.(*editor.Editor)
	return a, cmd
}

func (a *App) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.globalKey(msg); ok {
		return a, cmd
	}
	switch msg.String() {
	case "r":
		a.err = nil
		return a, a.loadOverview()
	case "b", "esc":
		return a, a.back()
	}
	return a, nil
}

func (a *App) updateStatic(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.globalKey(msg); ok {
		return a, cmd
	}
	switch msg.String() {
	case "b", "esc":
		return a, a.back()
	case "h", "enter":
		return a, a.navigate(router.PathHome)
	}
	return a, nil
}

func (a *App) openMenu() tea.Cmd {
	a.prevScreen = a.screen
	a.screen = ScreenMenu
	a.menu = menu.New(a.session.IsAuthenticated(), a.session.IsAdmin())
	return a.menu.Init()
}

// navigate moves the router and enters wherever the guard lets us land
func (a *App) navigate(location string) tea.Cmd {
	m := a.router.Navigate(location)
	if m.Path == router.PathLogin && !strings.HasPrefix(location, router.PathLogin) {
		a.afterLogin = location
	}
	return a.enter(m)
}

func (a *App) back() tea.Cmd {
	return a.enter(a.router.Back())
}

// enter switches to the screen for m and starts its loading
func (a *App) enter(m router.Match) tea.Cmd {
	a.match = m
	a.err = nil
	a.menu = nil

	switch m.Route.Name {
	case router.RouteHome, router.RouteCategory, router.RouteTag, router.RouteSearch:
		a.screen = ScreenPosts
		a.postList = postlist.New(listTitle(m), nil)
		a.postList.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.contentHeight()})
		if m.Route.Name == router.RouteSearch && m.Query.Get("q") == "" {
			a.postList.SetPage(&client.Page[client.Post]{})
			return a.postList.StartSearch("")
		}
		return a.loadPosts(m)

	case router.RoutePostDetail:
		a.screen = ScreenPost
		a.postView = nil
		return a.loadPost(m.Param("id"))

	case router.RouteLogin:
		a.screen = ScreenLogin
		a.authForm = authform.New(a.googleURL)
		return a.authForm.Init()

	case router.RouteOAuthCallback:
		a.screen = ScreenLogin
		a.authForm = authform.New(a.googleURL)
		code := m.Query.Get("code")
		if code == "" {
			return a.authForm.Fail(session.MsgGoogleLoginFailed)
		}
		a.authForm.Start()
		return a.googleLogin(code)

	case router.RoutePostCreate:
		a.screen = ScreenEditor
		a.editor = nil
		key := m.Query.Get("draft")
		if key == "" {
			key = drafts.NewPostKey()
		}
		return a.loadEditor(key, 0)

	case router.RoutePostEdit:
		a.screen = ScreenEditor
		a.editor = nil
		id, err := parseID(m.Param("id"))
		if err != nil {
			a.err = err
			return nil
		}
		return a.loadEditor(drafts.EditKey(id), id)

	case router.RouteAdmin:
		a.screen = ScreenAdmin
		a.dashboard = dashboard.New(nil, a.contentWidth(), a.contentHeight())
		return a.loadOverview()

	case router.RouteAbout:
		a.screen = ScreenAbout
		return nil
	}

	a.screen = ScreenNotFound
	return nil
}

func listTitle(m router.Match) string {
	switch m.Route.Name {
	case router.RouteCategory:
		return icons.Category.String() + " Category " + m.Param("id")
	case router.RouteTag:
		return icons.Tag.String() + " Tag " + m.Param("id")
	case router.RouteSearch:
		if q := m.Query.Get("q"); q != "" {
			return fmt.Sprintf("%s Search: %q", icons.Search.String(), q)
		}
		return icons.Search.String() + " Search"
	default:
		return icons.Post.String() + " Latest posts"
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindValidation, "parse id", fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenMenu:
		content = a.viewMenu()
	case ScreenPosts:
		content = a.viewPosts()
	case ScreenPost:
		content = a.viewPost()
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenEditor:
		content = a.viewEditor()
	case ScreenAdmin:
		content = a.viewAdmin()
	case ScreenAbout:
		content = a.viewAbout()
	default:
		content = a.viewNotFound()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewError() string {
	return styles.StatusCritical.Render("Error: " + apperr.UserMessage(a.err, a.err.Error()))
}

func (a *App) viewMenu() string {
	if a.menu != nil {
		return a.menu.View()
	}
	return ""
}

func (a *App) viewPosts() string {
	if a.postList == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.postList.View())
}

func (a *App) viewPost() string {
	if a.err != nil {
		return a.viewError()
	}
	if a.postView == nil {
		return styles.Panel.Width(a.contentWidth()).Render("Loading post...")
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.postView.View())
}

func (a *App) viewLogin() string {
	if a.authForm != nil {
		return a.authForm.View()
	}
	return ""
}

func (a *App) viewEditor() string {
	if a.err != nil {
		return a.viewError()
	}
	if a.editor == nil {
		return styles.Meta.Render("Loading editor...")
	}
	return a.editor.View()
}

func (a *App) viewAdmin() string {
	if a.err != nil {
		return a.viewError()
	}
	if a.dashboard == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.dashboard.View())
}

func (a *App) viewAbout() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.App.String() + " blogctl"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("A terminal client for the blog"))
	sb.WriteString("\n")
	if a.client != nil {
		sb.WriteString(styles.KeyStyle.Render("API ") + styles.ValueStyle.Render(a.client.BaseURL()))
		sb.WriteString("\n")
	}
	if a.session != nil {
		if u := a.session.User(); u != nil {
			sb.WriteString(styles.KeyStyle.Render("Signed in as ") + styles.ValueStyle.Render(u.Username) + " " + widgets.RoleBadges(u.Roles))
		} else {
			sb.WriteString(widgets.StatusText("Not signed in", widgets.StatusNeutral))
		}
	}
	return styles.Panel.Width(a.contentWidth()).Render(sb.String())
}

func (a *App) viewNotFound() string {
	msg := widgets.StatusText("Nothing at "+a.match.Path, widgets.StatusWarning)
	return styles.Panel.Width(a.contentWidth()).Render(msg + "\n\n" + styles.Help.Render("Press h to go home"))
}

// contentWidth calculates the width for a full-width panel
func (a *App) contentWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth - panelPadding
	}
	return a.width - panelPadding
}

// contentHeight calculates the height available for panel content
func (a *App) contentHeight() int {
	// Total overhead:
	// - Header: 1 line
	// - Newline after header: 1 line
	// - ActivePanel border+padding: 4 lines (top border, top padding, bottom padding, bottom border)
	// - Newline before footer: 1 line
	// - Footer: 1 line
	// Total: 8 lines overhead
	return max(1, a.height-8)
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("blogctl"))
	rightText := " " + contextStyle.Render(a.sessionLabel()) + " "

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"

	return borderStyle.Render(header)
}

func (a *App) sessionLabel() string {
	if a.session == nil {
		return "guest"
	}
	u := a.session.User()
	if u == nil {
		return "guest"
	}
	if a.session.IsAdmin() {
		return u.Username + " · admin"
	}
	return u.Username
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenMenu:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "Esc Close"}
	case ScreenPosts:
		shortcuts = []string{"Enter Open", "/ Search", "n/p Page", "c New", "m Menu", "q Quit"}
	case ScreenPost:
		shortcuts = []string{"↑↓ Scroll", "e Edit", "b Back", "m Menu", "q Quit"}
	case ScreenLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Cancel"}
	case ScreenEditor:
		shortcuts = []string{"Enter Next", "Esc Save & exit"}
	case ScreenAdmin:
		shortcuts = []string{"r Refresh", "b Back", "m Menu", "q Quit"}
	default:
		shortcuts = []string{"h Home", "b Back", "m Menu", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && (a.screen == ScreenPosts || a.screen == ScreenPost || a.screen == ScreenAdmin) {
		elapsed := a.formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"

	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// loadPosts creates a command to fetch the listing for m
func (a *App) loadPosts(m router.Match) tea.Cmd {
	c := a.client
	location := m.String()
	page, _ := strconv.Atoi(m.Query.Get("page"))

	return func() tea.Msg {
		ctx := context.Background()
		var (
			res *client.Page[client.Post]
			err error
		)
		switch m.Route.Name {
		case router.RouteCategory, router.RouteTag:
			id, perr := parseID(m.Param("id"))
			if perr != nil {
				return postsLoadedMsg{location: location, err: perr}
			}
			if m.Route.Name == router.RouteCategory {
				res, err = c.PostsByCategory(ctx, id, page, pageSize)
			} else {
				res, err = c.PostsByTag(ctx, id, page, pageSize)
			}
		case router.RouteSearch:
			res, err = c.SearchPosts(ctx, m.Query.Get("q"), page, pageSize)
		default:
			res, err = c.ListPosts(ctx, client.PageQuery{Page: page, Size: pageSize})
		}
		return postsLoadedMsg{location: location, page: res, err: err}
	}
}

// loadPost fetches a post and its comments together
func (a *App) loadPost(rawID string) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		id, err := parseID(rawID)
		if err != nil {
			return postLoadedMsg{err: err}
		}

		var (
			post     *client.Post
			comments []client.Comment
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			post, err = c.GetPost(ctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			comments, err = c.CommentsByPost(ctx, id)
			return err
		})
		if err := g.Wait(); err != nil {
			return postLoadedMsg{err: err}
		}
		return postLoadedMsg{post: post, comments: comments}
	}
}

// loadEditor gathers taxonomy and the starting draft. A saved local draft
// wins over the server copy of an existing post.
func (a *App) loadEditor(key string, postID int64) tea.Cmd {
	c := a.client
	store := a.drafts
	return func() tea.Msg {
		msg := editorLoadedMsg{key: key, postID: postID}
		local, hasLocal := store.Get(key)

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.categories, err = c.ListCategories(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.tags, err = c.ListTags(ctx)
			return err
		})
		if postID != 0 && !hasLocal {
			g.Go(func() error {
				post, err := c.GetPost(ctx, postID)
				if err != nil {
					return err
				}
				msg.draft = editor.FromPost(post)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return editorLoadedMsg{err: err}
		}
		if hasLocal {
			msg.draft = local
		}
		return msg
	}
}

// savePost creates or updates the post from a finished editor
func (a *App) savePost(done editor.CompleteMsg) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		ctx := context.Background()
		var (
			post *client.Post
			err  error
		)
		if done.PostID == 0 {
			post, err = c.CreatePost(ctx, done.Input)
		} else {
			post, err = c.UpdatePost(ctx, done.PostID, done.Input)
		}
		if err != nil {
			return postSavedMsg{key: done.Key, input: done.Input, post: &client.Post{ID: done.PostID}, err: err}
		}
		return postSavedMsg{key: done.Key, input: done.Input, post: post}
	}
}

// loadOverview creates a command to fetch the admin overview
func (a *App) loadOverview() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		ov, err := dashboard.Load(context.Background(), c)
		return overviewLoadedMsg{overview: ov, err: err}
	}
}

func (a *App) login(username, password string) tea.Cmd {
	s := a.session
	return func() tea.Msg {
		_, err := s.Login(context.Background(), username, password)
		return loginDoneMsg{err: err}
	}
}

func (a *App) googleLogin(code string) tea.Cmd {
	s := a.session
	return func() tea.Msg {
		_, err := s.GoogleLogin(context.Background(), code)
		return loginDoneMsg{err: err}
	}
}

// Run starts the TUI. Router moves made outside the app, such as the
// redirect after a 401, are delivered to it as messages.
func Run(deps Deps) error {
	app := New(deps)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)

	unsubscribe := deps.Router.Subscribe(func(m router.Match) {
		// Send blocks until the program reads it; never call it from Update's goroutine
		go p.Send(navigatedMsg{match: m})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
