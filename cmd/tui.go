// ABOUTME: Command that starts the interactive terminal UI
// ABOUTME: Shares the saved session, drafts and route guard with the other commands

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/tui"
)

var tuiStart string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the blog interactively",
	Long: `Start the terminal UI.

Example:
  blogctl tui --start /admin`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runTUI(os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiStart, "start", "", "Location to open first, e.g. /post/5 or /search?q=go")
}

// runTUI runs the terminal UI until the user quits and returns exit code
func runTUI(w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		deps := tui.Deps{
			Client:  e.client,
			Session: e.session,
			Router:  e.router,
			Drafts:  e.drafts,
			Start:   tuiStart,
		}
		if e.cfg.GoogleConfigured() {
			deps.GoogleAuthURL = client.GoogleAuthURL(e.cfg.GoogleClientID, e.cfg.GoogleRedirectURL, uuid.NewString())
		}

		if err := tui.Run(deps); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		return 0
	})
}
