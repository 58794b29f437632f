// ABOUTME: Post detail view with scrollable body and comments
// ABOUTME: Renders a post's metadata, content and discussion in a viewport

package postview

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/tui/icons"
	"github.com/nilmcc/blogctl/internal/tui/styles"
	"github.com/nilmcc/blogctl/internal/tui/widgets"
)

// PostView displays one post
type PostView struct {
	post     *client.Post
	comments []client.Comment
	viewport viewport.Model
	width    int
}

// New creates a post view sized to width x height
func New(post *client.Post, comments []client.Comment, width, height int) *PostView {
	pv := &PostView{
		post:     post,
		comments: comments,
		viewport: viewport.New(width, max(1, height)),
		width:    width,
	}
	pv.viewport.SetContent(pv.render())
	return pv
}

// Post returns the displayed post
func (pv *PostView) Post() *client.Post {
	return pv.post
}

// SetSize resizes the viewport and re-wraps the content
func (pv *PostView) SetSize(width, height int) {
	pv.width = width
	pv.viewport.Width = width
	pv.viewport.Height = max(1, height)
	pv.viewport.SetContent(pv.render())
}

// Init implements tea.Model
func (pv *PostView) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (pv *PostView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	pv.viewport, cmd = pv.viewport.Update(msg)
	return pv, cmd
}

// View implements tea.Model
func (pv *PostView) View() string {
	return pv.viewport.View()
}

// ScrollPercent reports how far the viewport is scrolled
func (pv *PostView) ScrollPercent() float64 {
	return pv.viewport.ScrollPercent()
}

func (pv *PostView) render() string {
	if pv.post == nil {
		return "No post loaded"
	}

	p := pv.post
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(p.Title))
	sb.WriteString("\n")

	var meta []string
	if p.Author != nil {
		meta = append(meta, icons.User.String()+" "+p.Author.Username)
	}
	if p.Category != nil {
		meta = append(meta, icons.Category.String()+" "+p.Category.Name)
	}
	if p.CreatedAt != "" {
		meta = append(meta, p.CreatedAt)
	}
	if len(meta) > 0 {
		sb.WriteString(styles.Meta.Render(strings.Join(meta, "  ")))
		sb.WriteString("  ")
	}
	sb.WriteString(widgets.PublishedBadge(p.Published))
	sb.WriteString("\n")

	if len(p.Tags) > 0 {
		names := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			names[i] = "#" + t.Name
		}
		sb.WriteString(styles.Meta.Render(icons.Tag.String() + " " + strings.Join(names, " ")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if p.Summary != "" {
		sb.WriteString(styles.Subtitle.Render(p.Summary))
		sb.WriteString("\n")
	}

	body := lipgloss.NewStyle().Width(max(20, pv.width-2))
	sb.WriteString(body.Render(PlainText(p.Content)))
	sb.WriteString("\n\n")

	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s Comments (%d)", icons.Comment.String(), len(pv.comments))))
	sb.WriteString("\n")
	if len(pv.comments) == 0 {
		sb.WriteString(styles.Meta.Render("  No comments yet"))
		sb.WriteString("\n")
	}
	for _, c := range pv.comments {
		who := "anonymous"
		if c.Author != nil {
			who = c.Author.Username
		}
		sb.WriteString(styles.KeyStyle.Render(who))
		if c.CreatedAt != "" {
			sb.WriteString(" " + styles.Meta.Render(c.CreatedAt))
		}
		sb.WriteString("\n")
		sb.WriteString(body.Render("  " + c.Content))
		sb.WriteString("\n")
	}

	return sb.String()
}

var (
	blockTags = regexp.MustCompile(`(?i)</?(p|div|br|h[1-6]|li|ul|ol|blockquote|pre)[^>]*>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// PlainText reduces stored HTML post content to readable terminal text
func PlainText(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}
	s := blockTags.ReplaceAllString(content, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
