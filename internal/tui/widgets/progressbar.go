// ABOUTME: Compact progress bar for ratios and scroll position
// ABOUTME: Renders a filled/empty bar with an optional percentage label

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders percent (0-100) as a bar width cells wide
func ProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 20
	}
	percent = max(0, min(100, percent))

	filled := int(percent / 100.0 * float64(width))
	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// ProgressBarWithLabel appends the rounded percentage
func ProgressBarWithLabel(percent float64, width int, color lipgloss.Color) string {
	return fmt.Sprintf("%s %3.0f%%", ProgressBar(percent, width, color), max(0, min(100, percent)))
}

// Ratio returns part/total as a percentage, zero when total is zero
func Ratio(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
