// ABOUTME: File commands: upload, download and delete stored files
// ABOUTME: Uploads report the URL to reference from post content

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
)

var downloadOutput string

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload images or attachments",
	Long: `Upload one or more files. Several files go in a single request.

Example:
  blogctl upload cover.png diagram.svg`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runUpload(ctx, os.Stdout, args)
		})
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage uploaded files",
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download NAME",
	Short: "Download a stored file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runDownload(ctx, os.Stdout, args[0])
		})
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runFileDelete(ctx, os.Stdout, os.Stdin, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd, filesCmd)
	filesCmd.AddCommand(filesDownloadCmd, filesDeleteCmd)

	filesDownloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Write to this path instead of NAME, - for stdout")
	filesDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// runUpload uploads files and returns exit code
func runUpload(ctx context.Context, w io.Writer, paths []string) int {
	return withEnv(w, func(e *appEnv) int {
		var (
			uploaded []client.FileUploadResponse
			err      error
		)
		if len(paths) == 1 {
			var one *client.FileUploadResponse
			if one, err = e.client.UploadFile(ctx, paths[0]); err == nil {
				uploaded = []client.FileUploadResponse{*one}
			}
		} else {
			uploaded, err = e.client.UploadFiles(ctx, paths)
		}
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(uploaded))
			return 0
		}
		for _, f := range uploaded {
			fmt.Fprintf(w, "%s  %s  %s  %s\n", f.FileName, f.FileType, humanize.Bytes(uint64(max(0, f.Size))), f.FileURL)
		}
		return 0
	})
}

// runDownload saves a stored file and returns exit code
func runDownload(ctx context.Context, w io.Writer, name string) int {
	return withEnv(w, func(e *appEnv) int {
		if downloadOutput == "-" {
			if err := e.client.DownloadFile(ctx, name, w); err != nil {
				return fail(w, err)
			}
			return 0
		}

		target := downloadOutput
		if target == "" {
			target = name
		}
		f, err := os.Create(target)
		if err != nil {
			return fail(w, apperr.Wrap(apperr.KindPersistence, "download file", err))
		}
		if err := e.client.DownloadFile(ctx, name, f); err != nil {
			f.Close()
			os.Remove(target)
			return fail(w, err)
		}
		if err := f.Close(); err != nil {
			return fail(w, apperr.Wrap(apperr.KindPersistence, "download file", err))
		}
		fmt.Fprintf(w, "Saved %s\n", target)
		return 0
	})
}

func runFileDelete(ctx context.Context, w io.Writer, in io.Reader, name string) int {
	return withEnv(w, func(e *appEnv) int {
		if err := confirm(ctx, in, fmt.Sprintf("Delete file %s?", name)); err != nil {
			return fail(w, err)
		}
		if err := e.client.DeleteFile(ctx, name); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted %s\n", name)
		return 0
	})
}
