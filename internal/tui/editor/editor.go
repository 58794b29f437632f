// ABOUTME: Post editor as a multi-step bubbletea model
// ABOUTME: Uses huh forms with a progress indicator and autosaves a local draft after each step

package editor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/drafts"
	"github.com/nilmcc/blogctl/internal/tui/icons"
	"github.com/nilmcc/blogctl/internal/tui/styles"
)

// CompleteMsg is sent when the last step is confirmed
type CompleteMsg struct {
	Key    string
	PostID int64
	Input  client.PostInput
}

// CancelledMsg is sent when the editor is abandoned. The draft is kept.
type CancelledMsg struct {
	Key string
}

// DraftSaver persists work in progress
type DraftSaver interface {
	Save(key string, d drafts.Draft) (drafts.Draft, error)
}

// Editor manages the post editing flow
type Editor struct {
	key        string
	postID     int64
	draft      drafts.Draft
	html       bool
	categories []client.Category
	tags       []client.Tag
	saver      DraftSaver

	form    *huh.Form
	step    int
	width   int
	err     string
	savedAt time.Time
}

// Step names for progress indicator
var stepNames = []string{"Basics", "Content", "Publish"}

// New creates an editor for key. postID is zero for a new post. The draft
// seeds every field.
func New(key string, postID int64, draft drafts.Draft, categories []client.Category, tags []client.Tag, saver DraftSaver) *Editor {
	e := &Editor{
		key:        key,
		postID:     postID,
		draft:      draft,
		html:       strings.HasPrefix(strings.TrimSpace(draft.Content), "<"),
		categories: categories,
		tags:       tags,
		saver:      saver,
		step:       1,
	}
	e.form = e.createStep1Form()
	return e
}

// FromPost converts an existing post into a draft
func FromPost(p *client.Post) drafts.Draft {
	d := drafts.Draft{
		Title:     p.Title,
		Content:   p.Content,
		Summary:   p.Summary,
		Published: p.Published,
	}
	if p.Category != nil {
		d.CategoryID = p.Category.ID
	}
	for _, t := range p.Tags {
		d.TagIDs = append(d.TagIDs, t.ID)
	}
	return d
}

func (e *Editor) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(200).
				Value(&e.draft.Title).
				Validate(requiredText("title")),
			huh.NewInput().
				Title("Summary").
				Description("Optional, shown in post lists").
				CharLimit(500).
				Value(&e.draft.Summary),
		).Title("Step 1: Basics"),
	).WithTheme(styles.FormTheme())
}

func (e *Editor) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Content").
				Description("Alt+Enter for a new line, Enter to continue").
				Lines(12).
				Value(&e.draft.Content).
				Validate(requiredText("content")),
			huh.NewConfirm().
				Title("Content is HTML").
				Value(&e.html),
		).Title("Step 2: Content"),
	).WithTheme(styles.FormTheme())
}

func (e *Editor) createStep3Form() *huh.Form {
	var fields []huh.Field

	if len(e.categories) > 0 {
		opts := []huh.Option[int64]{huh.NewOption("(none)", int64(0))}
		for _, c := range e.categories {
			opts = append(opts, huh.NewOption(c.Name, c.ID))
		}
		fields = append(fields, huh.NewSelect[int64]().
			Title("Category").
			Options(opts...).
			Value(&e.draft.CategoryID))
	}

	if len(e.tags) > 0 {
		opts := make([]huh.Option[int64], 0, len(e.tags))
		for _, t := range e.tags {
			opts = append(opts, huh.NewOption(t.Name, t.ID))
		}
		fields = append(fields, huh.NewMultiSelect[int64]().
			Title("Tags").
			Options(opts...).
			Value(&e.draft.TagIDs))
	}

	fields = append(fields, huh.NewConfirm().
		Title("Publish now?").
		Affirmative("Publish").
		Negative("Keep as draft").
		Value(&e.draft.Published))

	return huh.NewForm(
		huh.NewGroup(fields...).Title("Step 3: Publish"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (e *Editor) Init() tea.Cmd {
	return e.form.Init()
}

// Update implements tea.Model
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		form, cmd := e.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			e.form = f
		}
		return e, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			e.autosave()
			key := e.key
			return e, func() tea.Msg { return CancelledMsg{Key: key} }
		}
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		return e.advanceStep()
	}

	return e, cmd
}

func (e *Editor) advanceStep() (tea.Model, tea.Cmd) {
	e.autosave()

	switch e.step {
	case 1:
		e.step = 2
		e.form = e.createStep2Form()
		return e, e.form.Init()

	case 2:
		e.step = 3
		e.form = e.createStep3Form()
		return e, e.form.Init()

	case 3:
		msg := CompleteMsg{Key: e.key, PostID: e.postID, Input: e.Input()}
		return e, func() tea.Msg { return msg }
	}

	return e, nil
}

// autosave writes the current fields to the draft store
func (e *Editor) autosave() {
	if e.saver == nil {
		return
	}
	saved, err := e.saver.Save(e.key, e.draft)
	if err != nil {
		e.err = "Draft not saved: " + err.Error()
		return
	}
	e.savedAt = saved.LastUpdated
}

// Input builds the request body from the current fields
func (e *Editor) Input() client.PostInput {
	content := client.RichContent{Text: e.draft.Content}
	if e.html {
		content = client.RichContent{HTML: e.draft.Content}
	}
	return client.PostInput{
		Title:      strings.TrimSpace(e.draft.Title),
		Content:    content,
		Summary:    strings.TrimSpace(e.draft.Summary),
		CategoryID: e.draft.CategoryID,
		TagIDs:     e.draft.TagIDs,
		Published:  e.draft.Published,
	}
}

// Key returns the draft key being edited
func (e *Editor) Key() string {
	return e.key
}

// SetError shows a message above the form
func (e *Editor) SetError(msg string) {
	e.err = msg
}

// SetWidth sets the editor width for proper rendering
func (e *Editor) SetWidth(width int) {
	e.width = width
}

// View implements tea.Model
func (e *Editor) View() string {
	var sb strings.Builder

	sb.WriteString(e.renderProgress())
	sb.WriteString("\n")

	if !e.savedAt.IsZero() {
		sb.WriteString(styles.Meta.Render(fmt.Sprintf("%s Draft saved %s", icons.Draft.String(), e.savedAt.Local().Format("15:04:05"))))
		sb.WriteString("\n")
	}
	if e.err != "" {
		sb.WriteString(styles.StatusCritical.Render("Error: " + e.err))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(e.form.View())

	return sb.String()
}

// renderProgress renders the step progress indicator
func (e *Editor) renderProgress() string {
	width := e.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		if stepNum < e.step {
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		} else if stepNum == e.step {
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		} else {
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	filledWidth := (e.step * barWidth) / len(stepNames)
	emptyWidth := barWidth - filledWidth

	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	title := "New post"
	if e.postID != 0 {
		title = fmt.Sprintf("Editing post %d", e.postID)
	}
	styledTitle := titleStyle.Render(title)

	topFillWidth := max(0, width-5-lipgloss.Width(title))
	topBorder := "┌─ " + styledTitle + " " + strings.Repeat("─", topFillWidth) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"

	progressLinePadded := "│  " + filledBar + emptyBar + " │"

	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}

func requiredText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
