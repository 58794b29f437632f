// ABOUTME: Root command for the blogctl CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "CLI for the blog",
	Long: `blogctl is a command-line and terminal client for the blog backend.

It signs in once and keeps the session between runs, so posts, comments and
site administration can be scripted or browsed interactively with "blogctl tui".

Exit codes:
  0 - Success
  1 - Refused (not signed in, not permitted, invalid input)
  2 - Error (connectivity, backend failure, local storage)

Environment Variables:
  BLOG_API_URL         Backend API URL including /api (default: http://localhost:8080/api)
  BLOG_CONFIG_DIR      Directory for the session, drafts and debug log
  GOOGLE_CLIENT_ID     Google OAuth client for "login --google"
  GOOGLE_REDIRECT_URL  Redirect URL registered with the Google client
  LOG_LEVEL            debug, info, warn or error (default: info)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides BLOG_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory for session and drafts (overrides BLOG_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// runWithSignals runs fn with a context cancelled on SIGINT/SIGTERM and
// exits with its code when non-zero
func runWithSignals(fn func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := fn(ctx)
	cancel()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
