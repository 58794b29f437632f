// ABOUTME: Comment commands: list, add, edit and delete
// ABOUTME: Lists all comments or those of one post

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/client"
)

var commentsPost int64

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Read and write comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runCommentsList(ctx, os.Stdout)
		})
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add POST_ID TEXT...",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runCommentAdd(ctx, os.Stdout, args[0], strings.Join(args[1:], " "))
		})
	},
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit ID TEXT...",
	Short: "Change a comment",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runCommentEdit(ctx, os.Stdout, args[0], strings.Join(args[1:], " "))
		})
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runCommentDelete(ctx, os.Stdout, os.Stdin, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsEditCmd, commentsDeleteCmd)

	commentsListCmd.Flags().Int64Var(&commentsPost, "post", 0, "Only comments on this post ID")
	commentsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// runCommentsList lists comments and returns exit code
func runCommentsList(ctx context.Context, w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		var (
			comments []client.Comment
			err      error
		)
		if commentsPost > 0 {
			comments, err = e.client.CommentsByPost(ctx, commentsPost)
		} else {
			comments, err = e.client.ListComments(ctx)
		}
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(comments))
		} else {
			fmt.Fprintln(w, formatCommentsHuman(comments))
		}
		return 0
	})
}

func runCommentAdd(ctx context.Context, w io.Writer, postArg, text string) int {
	postID, err := parseID(postArg, "post")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		c, err := e.client.CreateComment(ctx, client.CommentInput{Content: text, PostID: postID})
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(c))
		} else {
			fmt.Fprintf(w, "Added comment #%d on post #%d\n", c.ID, postID)
		}
		return 0
	})
}

func runCommentEdit(ctx context.Context, w io.Writer, arg, text string) int {
	id, err := parseID(arg, "comment")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		c, err := e.client.UpdateComment(ctx, id, text)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(c))
		} else {
			fmt.Fprintf(w, "Updated comment #%d\n", c.ID)
		}
		return 0
	})
}

func runCommentDelete(ctx context.Context, w io.Writer, in io.Reader, arg string) int {
	id, err := parseID(arg, "comment")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if err := confirm(ctx, in, fmt.Sprintf("Delete comment #%d?", id)); err != nil {
			return fail(w, err)
		}
		if err := e.client.DeleteComment(ctx, id); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted comment #%d\n", id)
		return 0
	})
}

func formatCommentsHuman(comments []client.Comment) string {
	if len(comments) == 0 {
		return "No comments"
	}
	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		author := ""
		if c.Author != nil {
			author = c.Author.Username
		}
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			strconv.FormatInt(c.PostID, 10),
			author,
			c.Content,
		})
	}
	return renderTable([]string{"ID", "Post", "Author", "Comment"}, rows)
}
