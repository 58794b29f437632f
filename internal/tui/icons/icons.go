// ABOUTME: Icons for posts, taxonomy, people and status in the TUI
// ABOUTME: Uses Nerd Font glyphs on terminals known to ship them, plain Unicode otherwise

package icons

import (
	"os"
	"strings"
	"sync"
)

// terminals that are normally set up with a Nerd Font
var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

var (
	nerdFontsOnce sync.Once
	nerdFonts     bool
)

// detect decides from the environment whether Nerd Font glyphs render.
// BLOG_NERD_FONTS=1|true|0|false wins over terminal sniffing.
func detect(getenv func(string) string) bool {
	switch strings.ToLower(getenv("BLOG_NERD_FONTS")) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}

	term := strings.ToLower(getenv("TERM"))
	program := getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if program == t || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// HasNerdFonts reports whether glyphs are used; decided once per process
func HasNerdFonts() bool {
	nerdFontsOnce.Do(func() {
		nerdFonts = detect(os.Getenv)
	})
	return nerdFonts
}

// Icon is a glyph with a Unicode fallback
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	return i.pick(HasNerdFonts())
}

func (i Icon) pick(nerd bool) string {
	if nerd {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	Post     = Icon{"󰈙", "▤"}
	Category = Icon{"󰉋", "▣"}
	Tag      = Icon{"󰓹", "#"}
	Comment  = Icon{"󰅺", "✎"}
	User     = Icon{"󰀄", "☺"}
	Draft    = Icon{"󰏫", "✐"}
	Admin    = Icon{"󰒃", "⛊"}
	Lock     = Icon{"󰌾", "⚿"}
	Search   = Icon{"󰍉", "⌕"}
	App      = Icon{"󰃀", "◈"}

	CheckOK  = Icon{"", "✓"}
	Warning  = Icon{"", "⚠"}
	Critical = Icon{"", "✗"}
	Info     = Icon{"", "ℹ"}
)
