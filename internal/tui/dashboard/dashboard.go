// ABOUTME: Admin overview displaying site-wide counts and recent posts
// ABOUTME: Loads every listing concurrently and renders them as metric blocks

package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/tui/icons"
	"github.com/nilmcc/blogctl/internal/tui/styles"
	"github.com/nilmcc/blogctl/internal/tui/widgets"
)

// recentCount is how many latest posts the overview lists
const recentCount = 5

// Source is the API surface the overview reads
type Source interface {
	ListPosts(ctx context.Context, q client.PageQuery) (*client.Page[client.Post], error)
	ListCategories(ctx context.Context) ([]client.Category, error)
	ListTags(ctx context.Context) ([]client.Tag, error)
	ListComments(ctx context.Context) ([]client.Comment, error)
	ListUsers(ctx context.Context) ([]client.User, error)
}

// Overview is a snapshot of the site
type Overview struct {
	Posts       int64
	Unpublished int
	Categories  int
	Tags        int
	Comments    int
	Users       int
	Admins      int
	Recent      []client.Post
	LoadedAt    time.Time
}

// Load fetches every listing in parallel. The first failure cancels the rest.
func Load(ctx context.Context, src Source) (*Overview, error) {
	ov := &Overview{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := src.ListPosts(ctx, client.PageQuery{Size: recentCount})
		if err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		ov.Posts = page.TotalElements
		ov.Recent = page.Content
		for _, p := range page.Content {
			if !p.Published {
				ov.Unpublished++
			}
		}
		return nil
	})
	g.Go(func() error {
		cats, err := src.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		ov.Categories = len(cats)
		return nil
	})
	g.Go(func() error {
		tags, err := src.ListTags(ctx)
		if err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		ov.Tags = len(tags)
		return nil
	})
	g.Go(func() error {
		comments, err := src.ListComments(ctx)
		if err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		ov.Comments = len(comments)
		return nil
	})
	g.Go(func() error {
		users, err := src.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		ov.Users = len(users)
		for i := range users {
			if users[i].HasRole("ROLE_ADMIN") {
				ov.Admins++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	ov.LoadedAt = time.Now()
	return ov, nil
}

// Dashboard displays the admin overview
type Dashboard struct {
	overview *Overview
	width    int
	height   int
}

// New creates a new dashboard
func New(overview *Overview, width, height int) *Dashboard {
	return &Dashboard{
		overview: overview,
		width:    width,
		height:   height,
	}
}

// Update replaces the displayed overview
func (d *Dashboard) Update(overview *Overview) {
	d.overview = overview
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.overview == nil {
		return styles.Panel.Width(max(20, d.width)).Render("Loading overview...")
	}

	ov := d.overview
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Admin.String() + " Site Overview"))
	sb.WriteString("\n")

	cfg := widgets.DefaultMetricBlockConfig()
	blocks := []string{
		widgets.MetricBlock(icons.Post, "Posts", fmt.Sprintf("%d", ov.Posts), fmt.Sprintf("%d unpublished", ov.Unpublished), cfg),
		widgets.MetricBlock(icons.Comment, "Comments", fmt.Sprintf("%d", ov.Comments), "all posts", cfg),
		widgets.MetricBlock(icons.User, "Users", fmt.Sprintf("%d", ov.Users), fmt.Sprintf("%d admins", ov.Admins), cfg),
	}
	taxonomy := []string{
		widgets.MetricBlock(icons.Category, "Categories", fmt.Sprintf("%d", ov.Categories), "", cfg),
		widgets.MetricBlock(icons.Tag, "Tags", fmt.Sprintf("%d", ov.Tags), "", cfg),
	}

	// Narrow terminals stack the blocks
	if d.width >= 3*cfg.Width {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, taxonomy...))
	} else {
		sb.WriteString(strings.Join(append(blocks, taxonomy...), "\n"))
	}
	sb.WriteString("\n\n")

	recent := int64(len(ov.Recent))
	sb.WriteString(fmt.Sprintf("%s %s\n\n",
		styles.Meta.Render("Published (recent)"),
		widgets.ProgressBarWithLabel(widgets.Ratio(recent-int64(ov.Unpublished), recent), 20, styles.Secondary)))

	sb.WriteString(styles.Subtitle.Render("Recent posts"))
	sb.WriteString("\n")
	if len(ov.Recent) == 0 {
		sb.WriteString(styles.Meta.Render("  none"))
		sb.WriteString("\n")
	}
	for _, p := range ov.Recent {
		sb.WriteString(fmt.Sprintf("  %s %s\n", widgets.PublishedBadge(p.Published), p.Title))
	}

	return lipgloss.NewStyle().
		Width(max(20, d.width)).
		Render(sb.String())
}
