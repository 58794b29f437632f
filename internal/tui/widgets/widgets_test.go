// ABOUTME: Tests for the shared widgets
// ABOUTME: Validates badge labels, bar geometry and metric block layout

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/nilmcc/blogctl/internal/tui/icons"
)

func TestProgressBarWidth(t *testing.T) {
	tests := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{150, 20},
		{-5, 0},
	}

	for _, tc := range tests {
		bar := ProgressBar(tc.percent, 20, lipgloss.Color("#10B981"))
		if w := lipgloss.Width(bar); w != 20 {
			t.Errorf("percent %.0f: expected width 20, got %d", tc.percent, w)
		}
		if got := strings.Count(bar, "━"); got != tc.filled {
			t.Errorf("percent %.0f: expected %d filled cells, got %d", tc.percent, tc.filled, got)
		}
	}
}

func TestProgressBarWithLabel(t *testing.T) {
	if got := ProgressBarWithLabel(42, 10, lipgloss.Color("#10B981")); !strings.HasSuffix(got, " 42%") {
		t.Errorf("expected label suffix, got %q", got)
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(1, 4); got != 25 {
		t.Errorf("expected 25, got %v", got)
	}
	if got := Ratio(3, 0); got != 0 {
		t.Errorf("expected 0 for empty total, got %v", got)
	}
}

func TestPublishedBadge(t *testing.T) {
	if !strings.Contains(PublishedBadge(true), "PUBLISHED") {
		t.Error("expected PUBLISHED badge")
	}
	if !strings.Contains(PublishedBadge(false), "DRAFT") {
		t.Error("expected DRAFT badge")
	}
}

func TestRoleBadges(t *testing.T) {
	got := RoleBadges([]string{"ROLE_USER", "ROLE_ADMIN"})
	if !strings.Contains(got, "USER") || !strings.Contains(got, "ADMIN") {
		t.Errorf("expected role names without prefix, got %q", got)
	}
	if strings.Contains(got, "ROLE_") {
		t.Errorf("expected ROLE_ prefix stripped, got %q", got)
	}
	if !strings.Contains(RoleBadges(nil), "NO ROLE") {
		t.Error("expected placeholder for no roles")
	}
}

func TestMetricBlockLayout(t *testing.T) {
	block := MetricBlock(icons.Post, "Posts", "42", "3 unpublished", DefaultMetricBlockConfig())

	lines := strings.Split(block, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 22 {
			t.Errorf("line %d: expected width 22, got %d (%q)", i, w, line)
		}
	}
	if !strings.Contains(block, "42") || !strings.Contains(block, "3 unpublished") {
		t.Error("expected value and subtitle rendered")
	}
}
