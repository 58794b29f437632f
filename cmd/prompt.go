// ABOUTME: Input helpers for commands that need secrets or confirmation
// ABOUTME: Reads piped stdin in scripts and falls back to huh forms in a terminal

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/tui/styles"
)

// isTerminal reports whether in is an interactive terminal
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// lineReader reads successive trimmed lines from piped input
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(in)}
}

// next returns the next line without its line ending. A final line without
// a newline is returned as is.
func (l *lineReader) next(what string) (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", apperr.New(apperr.KindValidation, "read", fmt.Sprintf("expected %s on stdin", what))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runForm runs an interactive form; aborting counts as a refusal
func runForm(ctx context.Context, fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme())
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return apperr.New(apperr.KindValidation, "form", "cancelled")
		}
		return apperr.Wrap(apperr.KindUnknown, "form", err)
	}
	return nil
}

func passwordInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Validate(required(strings.ToLower(title)))
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// extractCode accepts either a bare authorization code or the whole
// redirect URL the browser landed on
func extractCode(input string) string {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "code=") {
		return input
	}
	if u, err := url.Parse(input); err == nil {
		if code := u.Query().Get("code"); code != "" {
			return code
		}
	}
	if q, err := url.ParseQuery(strings.TrimPrefix(input, "?")); err == nil {
		if code := q.Get("code"); code != "" {
			return code
		}
	}
	return input
}

// assumeYes skips delete confirmations; bound to --yes on destructive commands
var assumeYes bool

// confirm asks before a destructive action. Without a terminal --yes is required.
func confirm(ctx context.Context, in io.Reader, question string) error {
	if assumeYes {
		return nil
	}
	if !isTerminal(in) {
		return apperr.New(apperr.KindValidation, "confirm", "pass --yes to confirm when stdin is not a terminal")
	}

	var ok bool
	if err := runForm(ctx, huh.NewConfirm().Title(question).Value(&ok)); err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindValidation, "confirm", "cancelled")
	}
	return nil
}
