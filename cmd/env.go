// ABOUTME: Shared wiring for commands: config, logging, storage, client and session
// ABOUTME: Also holds the output and exit code helpers every command uses

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/config"
	"github.com/nilmcc/blogctl/internal/drafts"
	"github.com/nilmcc/blogctl/internal/logger"
	"github.com/nilmcc/blogctl/internal/router"
	"github.com/nilmcc/blogctl/internal/session"
	"github.com/nilmcc/blogctl/internal/storage"
)

// appEnv is everything a command needs, wired the same way for the CLI and the TUI
type appEnv struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Store
	router  *router.Router
	drafts  *drafts.Store
	logs    io.Closer
}

// openEnv loads configuration, restores the saved session and wires the
// client, session and router to each other
func openEnv() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "config", err)
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "config", err)
		}
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
		if os.Getenv("LOG_FILE") == "" {
			cfg.LogFile = filepath.Join(configDir, "debug.log")
		}
	}
	if cfg.ConfigDir == "" {
		return nil, apperr.New(apperr.KindPersistence, "config",
			"cannot determine a config directory, set BLOG_CONFIG_DIR or --config-dir")
	}

	logs, err := logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Warn("Cannot open log file, logging to stderr", "file", cfg.LogFile, "error", err)
	}
	log := slog.Default()

	store := storage.NewFile(cfg.ConfigDir)
	c := client.New(cfg.APIURL,
		client.WithStore(store),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimit),
		client.WithExcludedHosts(cfg.ExcludedHosts...),
		client.WithRedirectDelay(cfg.RedirectDelay),
		client.WithLogger(log),
	)
	sess := session.New(c, store,
		session.WithVerifyDelay(cfg.VerifyDelay),
		session.WithLogger(log),
	)
	r := router.New(sess, log)

	c.SetNavigator(r)
	sess.SetNavigator(r)
	c.OnUnauthorized(sess.Reset)

	sess.InitAuth()

	return &appEnv{
		cfg:     cfg,
		client:  c,
		session: sess,
		router:  r,
		drafts:  drafts.New(store),
		logs:    logs,
	}, nil
}

// Close releases the log file
func (e *appEnv) Close() {
	if e.logs != nil {
		e.logs.Close()
	}
}

// allow runs the route guard for location the way the TUI would before
// showing that screen, and explains a refusal
func (e *appEnv) allow(w io.Writer, location string) bool {
	m, d := e.router.Check(location)
	if d.Allowed() {
		return true
	}
	if d.Redirect == router.PathLogin {
		fmt.Fprintf(w, "Error: %s requires signing in, run \"blogctl login\" first\n", m.Path)
	} else {
		fmt.Fprintf(w, "Error: %s requires an administrator account\n", m.Path)
	}
	return false
}

// fail prints err and returns its exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitCodeFor(err)
}

// exitCodeFor maps an error kind to an exit code: refusals are 1, faults are 2
func exitCodeFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindAuth, apperr.KindValidation:
		return 1
	default:
		return 2
	}
}

// withEnv opens the environment, runs fn and closes it again
func withEnv(w io.Writer, fn func(e *appEnv) int) int {
	e, err := openEnv()
	if err != nil {
		return fail(w, err)
	}
	defer e.Close()
	return fn(e)
}

// formatJSON formats any response as indented JSON
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// renderTable renders rows under headers with a plain border
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

// parseID parses a positional numeric ID
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindValidation, "parse", fmt.Sprintf("invalid %s ID %q", what, arg))
	}
	return id, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
