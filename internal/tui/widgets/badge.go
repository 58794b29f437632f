// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Provides colored inline badges for roles, publish state and messages

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nilmcc/blogctl/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)
	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// PublishedBadge shows whether a post is live
func PublishedBadge(published bool) string {
	if published {
		return Badge("PUBLISHED", StatusOK)
	}
	return Badge("DRAFT", StatusWarning)
}

// RoleBadges renders one badge per role, admins highlighted
func RoleBadges(roles []string) string {
	if len(roles) == 0 {
		return Badge("NO ROLE", StatusNeutral)
	}
	badges := make([]string, 0, len(roles))
	for _, r := range roles {
		label := strings.TrimPrefix(r, "ROLE_")
		level := StatusInfo
		if r == "ROLE_ADMIN" {
			level = StatusCritical
		}
		badges = append(badges, Badge(label, level))
	}
	return strings.Join(badges, " ")
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	var icon string
	switch level {
	case StatusOK:
		icon = icons.CheckOK.String()
	case StatusWarning:
		icon = icons.Warning.String()
	case StatusCritical:
		icon = icons.Critical.String()
	case StatusInfo:
		icon = icons.Info.String()
	default:
		icon = "•"
	}
	return lipgloss.NewStyle().Foreground(bg).Render(icon)
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	textStyle := lipgloss.NewStyle().Foreground(bg)
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}
