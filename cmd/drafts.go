// ABOUTME: Draft commands: list, show, delete and clear locally saved posts
// ABOUTME: Drafts are shared with the TUI editor through the config directory

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/drafts"
)

var draftsCmd = &cobra.Command{
	Use:     "drafts",
	Aliases: []string{"draft"},
	Short:   "Manage unsent post drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drafts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runDraftsList(os.Stdout)
		})
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Show a draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runDraftShow(os.Stdout, args[0])
		})
	},
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Discard a draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runDraftDelete(os.Stdout, args[0])
		})
	},
}

var draftsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard every draft",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runDraftsClear(ctx, os.Stdout, os.Stdin)
		})
	},
}

func init() {
	rootCmd.AddCommand(draftsCmd)
	draftsCmd.AddCommand(draftsListCmd, draftsShowCmd, draftsDeleteCmd, draftsClearCmd)

	draftsClearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// runDraftsList lists drafts and returns exit code
func runDraftsList(w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		entries := e.drafts.List()

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(entries))
		} else {
			fmt.Fprintln(w, formatDraftsHuman(entries))
		}
		return 0
	})
}

func runDraftShow(w io.Writer, key string) int {
	return withEnv(w, func(e *appEnv) int {
		d, ok := e.drafts.Get(key)
		if !ok {
			return fail(w, apperr.New(apperr.KindValidation, "show draft", fmt.Sprintf("no draft with key %q", key)))
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(d))
			return 0
		}
		fmt.Fprintf(w, "%s\n%s\nSaved %s\n\n%s\n", key, draftTitle(d), humanize.Time(d.LastUpdated), d.Content)
		return 0
	})
}

func runDraftDelete(w io.Writer, key string) int {
	return withEnv(w, func(e *appEnv) int {
		existed, err := e.drafts.Delete(key)
		if err != nil {
			return fail(w, err)
		}
		if !existed {
			return fail(w, apperr.New(apperr.KindValidation, "delete draft", fmt.Sprintf("no draft with key %q", key)))
		}
		fmt.Fprintf(w, "Discarded draft %s\n", key)
		return 0
	})
}

func runDraftsClear(ctx context.Context, w io.Writer, in io.Reader) int {
	return withEnv(w, func(e *appEnv) int {
		if err := confirm(ctx, in, "Discard every draft?"); err != nil {
			return fail(w, err)
		}
		if err := e.drafts.Clear(); err != nil {
			return fail(w, err)
		}
		fmt.Fprintln(w, "Discarded all drafts")
		return 0
	})
}

func draftTitle(d drafts.Draft) string {
	if d.Title == "" {
		return "(untitled)"
	}
	return d.Title
}

func formatDraftsHuman(entries []drafts.Entry) string {
	if len(entries) == 0 {
		return "No drafts"
	}
	rows := make([][]string, 0, len(entries))
	for _, en := range entries {
		kind := "new post"
		if !drafts.IsNewPostKey(en.Key) {
			kind = "edit"
		}
		rows = append(rows, []string{en.Key, kind, draftTitle(en.Draft), humanize.Time(en.Draft.LastUpdated)})
	}
	return renderTable([]string{"Key", "Kind", "Title", "Saved"}, rows)
}
