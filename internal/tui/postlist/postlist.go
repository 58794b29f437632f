// ABOUTME: Post list TUI component for home, category, tag and search screens
// ABOUTME: Shows one page of posts with cursor selection, paging and a search box

package postlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/tui/styles"
	"github.com/nilmcc/blogctl/internal/tui/widgets"
)

// State represents the current UI state
type state int

const (
	stateList state = iota
	stateSearch
)

// PostSelectedMsg is sent when a post is opened
type PostSelectedMsg struct {
	ID int64
}

// SearchMsg is sent when a search query is submitted
type SearchMsg struct {
	Query string
}

// PageMsg asks for another page of the same listing
type PageMsg struct {
	Page int
}

// CancelledMsg is sent when the user backs out
type CancelledMsg struct{}

// PostList is the post listing component
type PostList struct {
	title     string
	page      *client.Page[client.Post]
	cursor    int
	state     state
	textInput textinput.Model
	err       string
	width     int
	height    int
}

// Styles
var (
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Danger)
	dividerStyle = lipgloss.NewStyle().Foreground(styles.Surface)
)

// New creates a list showing page under title. A nil page renders as loading.
func New(title string, page *client.Page[client.Post]) *PostList {
	ti := textinput.New()
	ti.Placeholder = "search posts"
	ti.CharLimit = 100
	ti.Width = 40

	return &PostList{
		title:     title,
		page:      page,
		state:     stateList,
		textInput: ti,
	}
}

// SetPage replaces the listing and resets the cursor
func (pl *PostList) SetPage(page *client.Page[client.Post]) {
	pl.page = page
	pl.cursor = 0
}

// SetError sets an error message to display
func (pl *PostList) SetError(msg string) {
	pl.err = msg
}

// Searching reports whether the search box has focus
func (pl *PostList) Searching() bool {
	return pl.state == stateSearch
}

// StartSearch focuses the search box, prefilled with query
func (pl *PostList) StartSearch(query string) tea.Cmd {
	pl.state = stateSearch
	pl.textInput.SetValue(query)
	pl.textInput.Focus()
	return textinput.Blink
}

// Init implements tea.Model
func (pl *PostList) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (pl *PostList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pl.width = msg.Width
		pl.height = msg.Height
		return pl, nil

	case tea.KeyMsg:
		pl.err = ""

		switch pl.state {
		case stateList:
			return pl.updateList(msg)
		case stateSearch:
			return pl.updateSearch(msg)
		}
	}

	return pl, nil
}

func (pl *PostList) posts() []client.Post {
	if pl.page == nil {
		return nil
	}
	return pl.page.Content
}

func (pl *PostList) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	posts := pl.posts()

	switch msg.String() {
	case "up", "k":
		if pl.cursor > 0 {
			pl.cursor--
		}
	case "down", "j":
		if pl.cursor < len(posts)-1 {
			pl.cursor++
		}
	case "enter":
		if len(posts) == 0 {
			return pl, nil
		}
		id := posts[pl.cursor].ID
		return pl, func() tea.Msg { return PostSelectedMsg{ID: id} }
	case "/":
		pl.state = stateSearch
		pl.textInput.Focus()
		return pl, textinput.Blink
	case "n", "right":
		if pl.page != nil && !pl.page.Last {
			next := pl.page.Number + 1
			return pl, func() tea.Msg { return PageMsg{Page: next} }
		}
	case "p", "left":
		if pl.page != nil && pl.page.Number > 0 {
			prev := pl.page.Number - 1
			return pl, func() tea.Msg { return PageMsg{Page: prev} }
		}
	case "esc", "b":
		return pl, func() tea.Msg { return CancelledMsg{} }
	}

	return pl, nil
}

func (pl *PostList) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		pl.state = stateList
		pl.textInput.Blur()
		pl.textInput.SetValue("")
		return pl, nil
	case "enter":
		query := strings.TrimSpace(pl.textInput.Value())
		if query == "" {
			pl.err = "Please enter a search term"
			return pl, nil
		}
		pl.state = stateList
		pl.textInput.Blur()
		return pl, func() tea.Msg { return SearchMsg{Query: query} }
	}

	var cmd tea.Cmd
	pl.textInput, cmd = pl.textInput.Update(msg)
	return pl, cmd
}

// View implements tea.Model
func (pl *PostList) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(pl.title))
	b.WriteString("\n")

	if pl.state == stateSearch {
		b.WriteString(pl.textInput.View())
		b.WriteString("\n\n")
	}

	switch {
	case pl.page == nil:
		b.WriteString(styles.Meta.Render("Loading posts..."))
	case len(pl.page.Content) == 0:
		b.WriteString(styles.Meta.Render("No posts found"))
	default:
		for i, post := range pl.page.Content {
			b.WriteString(pl.renderRow(i, post))
			b.WriteString("\n")
		}

		dividerWidth := min(40, pl.width-4)
		if dividerWidth < 1 {
			dividerWidth = 40
		}
		b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
		b.WriteString(styles.Meta.Render(fmt.Sprintf("Page %d of %d · %d posts",
			pl.page.Number+1, max(1, pl.page.TotalPages), pl.page.TotalElements)))
	}

	if pl.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + pl.err))
	}

	return b.String()
}

func (pl *PostList) renderRow(i int, post client.Post) string {
	cursor := "  "
	style := styles.Normal
	if i == pl.cursor {
		cursor = "> "
		style = styles.Selected
	}

	title := post.Title
	if limit := pl.width - 30; limit > 10 && len([]rune(title)) > limit {
		title = string([]rune(title)[:limit-3]) + "..."
	}

	meta := ""
	if post.Author != nil {
		meta = post.Author.Username
	}
	if post.Category != nil {
		meta += " · " + post.Category.Name
	}

	row := cursor + style.Render(title)
	if !post.Published {
		row += " " + widgets.PublishedBadge(false)
	}
	if meta != "" {
		row += "  " + styles.Meta.Render(meta)
	}
	return row
}
