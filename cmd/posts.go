// ABOUTME: Post commands: list, search, show, create, edit and delete
// ABOUTME: Create and edit keep unsent changes as drafts so nothing typed is lost

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/drafts"
	"github.com/nilmcc/blogctl/internal/router"
	"github.com/nilmcc/blogctl/internal/tui/editor"
	"github.com/nilmcc/blogctl/internal/tui/postview"
)

var (
	postsPage     int
	postsSize     int
	postsCategory int64
	postsTag      int64
	postsUser     int64
	postComments  bool
)

// postOptions are the create/edit flags
type postOptions struct {
	title        string
	summary      string
	contentFile  string
	html         bool
	categoryID   int64
	tagIDs       []int64
	published    bool
	publishedSet bool
	draftKey     string
	saveDraft    bool
	fresh        bool
}

var postOpts postOptions

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "Browse and manage posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Long: `List a page of posts. Filter by category, tag or author ID.

Example:
  blogctl posts list --category 3 --page 2`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPostsList(ctx, os.Stdout)
		})
	},
}

var postsSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search posts by keyword",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPostsSearch(ctx, os.Stdout, strings.Join(args, " "))
		})
	},
}

var postsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPostGet(ctx, os.Stdout, args[0])
		})
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",
	Long: `Create a post. Requires signing in.

Content is read from --content-file, or from stdin with --content-file -.
If the backend rejects the post the input is kept as a draft; resume it
with --draft KEY (see "blogctl drafts list").

Example:
  blogctl posts create --title "Hello" --content-file hello.md --tag 1 --tag 4 --published`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		postOpts.publishedSet = cmd.Flags().Changed("published")
		runWithSignals(func(ctx context.Context) int {
			return runPostCreate(ctx, os.Stdout, os.Stdin)
		})
	},
}

var postsEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change an existing post",
	Long: `Edit a post. Only the fields given as flags change.

Unsent edits are kept as a draft for the post and picked up by the next
edit of the same post unless --fresh is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		postOpts.publishedSet = cmd.Flags().Changed("published")
		runWithSignals(func(ctx context.Context) int {
			return runPostEdit(ctx, os.Stdout, os.Stdin, args[0])
		})
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPostDelete(ctx, os.Stdout, os.Stdin, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsSearchCmd, postsGetCmd, postsCreateCmd, postsEditCmd, postsDeleteCmd)

	for _, c := range []*cobra.Command{postsListCmd, postsSearchCmd} {
		c.Flags().IntVar(&postsPage, "page", 1, "Page number, starting at 1")
		c.Flags().IntVar(&postsSize, "size", 10, "Posts per page")
	}
	postsListCmd.Flags().Int64Var(&postsCategory, "category", 0, "Only posts in this category ID")
	postsListCmd.Flags().Int64Var(&postsTag, "tag", 0, "Only posts with this tag ID")
	postsListCmd.Flags().Int64Var(&postsUser, "user", 0, "Only posts by this user ID")
	postsGetCmd.Flags().BoolVar(&postComments, "comments", false, "Include comments")

	for _, c := range []*cobra.Command{postsCreateCmd, postsEditCmd} {
		c.Flags().StringVar(&postOpts.title, "title", "", "Title")
		c.Flags().StringVar(&postOpts.summary, "summary", "", "Short summary")
		c.Flags().StringVar(&postOpts.contentFile, "content-file", "", "File with the post body, - for stdin")
		c.Flags().BoolVar(&postOpts.html, "html", false, "Treat the content as HTML")
		c.Flags().Int64Var(&postOpts.categoryID, "category", 0, "Category ID")
		c.Flags().Int64SliceVar(&postOpts.tagIDs, "tag", nil, "Tag ID, repeatable")
		c.Flags().BoolVar(&postOpts.published, "published", false, "Make the post public")
		c.Flags().BoolVar(&postOpts.saveDraft, "save-draft", false, "Only save the draft, do not send")
	}
	postsCreateCmd.Flags().StringVar(&postOpts.draftKey, "draft", "", "Resume the draft with this key")
	postsEditCmd.Flags().BoolVar(&postOpts.fresh, "fresh", false, "Ignore a saved draft for this post")

	postsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// runPostsList lists posts and returns exit code
func runPostsList(ctx context.Context, w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		page := max(0, postsPage-1)

		var (
			resp *client.Page[client.Post]
			err  error
		)
		switch {
		case postsCategory > 0:
			resp, err = e.client.PostsByCategory(ctx, postsCategory, page, postsSize)
		case postsTag > 0:
			resp, err = e.client.PostsByTag(ctx, postsTag, page, postsSize)
		case postsUser > 0:
			resp, err = e.client.PostsByUser(ctx, postsUser, page, postsSize)
		default:
			resp, err = e.client.ListPosts(ctx, client.PageQuery{Page: page, Size: postsSize})
		}
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(resp))
		} else {
			fmt.Fprintln(w, formatPostsHuman(resp))
		}
		return 0
	})
}

// runPostsSearch searches posts and returns exit code
func runPostsSearch(ctx context.Context, w io.Writer, query string) int {
	return withEnv(w, func(e *appEnv) int {
		resp, err := e.client.SearchPosts(ctx, query, max(0, postsPage-1), postsSize)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(resp))
		} else {
			fmt.Fprintln(w, formatPostsHuman(resp))
		}
		return 0
	})
}

// postDetail is a post with its comments, for JSON output
type postDetail struct {
	*client.Post
	Comments []client.Comment `json:"comments,omitempty"`
}

// runPostGet shows one post and returns exit code
func runPostGet(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "post")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		post, err := e.client.GetPost(ctx, id)
		if err != nil {
			return fail(w, err)
		}
		detail := postDetail{Post: post}
		if postComments {
			comments, err := e.client.CommentsByPost(ctx, id)
			if err != nil {
				return fail(w, err)
			}
			detail.Comments = comments
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(detail))
		} else {
			fmt.Fprintln(w, formatPostHuman(detail))
		}
		return 0
	})
}

// runPostCreate sends a new post and returns exit code
func runPostCreate(ctx context.Context, w io.Writer, in io.Reader) int {
	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathPostCreate) {
			return 1
		}

		key := postOpts.draftKey
		var d drafts.Draft
		if key != "" {
			saved, ok := e.drafts.Get(key)
			if !ok {
				return fail(w, apperr.New(apperr.KindValidation, "create post", fmt.Sprintf("no draft with key %q", key)))
			}
			d = saved
		} else {
			key = drafts.NewPostKey()
		}

		if err := applyPostOptions(&d, in); err != nil {
			return fail(w, err)
		}
		return submitPost(ctx, w, e, key, 0, d)
	})
}

// runPostEdit updates a post and returns exit code
func runPostEdit(ctx context.Context, w io.Writer, in io.Reader, arg string) int {
	id, err := parseID(arg, "post")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, "/posts/edit/"+strconv.FormatInt(id, 10)) {
			return 1
		}

		key := drafts.EditKey(id)
		d, ok := e.drafts.Get(key)
		if ok && !postOpts.fresh {
			if !IsJSONOutput() {
				fmt.Fprintf(w, "Resuming draft saved %s\n", d.LastUpdated.Format("2006-01-02 15:04"))
			}
		} else {
			post, err := e.client.GetPost(ctx, id)
			if err != nil {
				return fail(w, err)
			}
			d = editor.FromPost(post)
		}

		if err := applyPostOptions(&d, in); err != nil {
			return fail(w, err)
		}
		return submitPost(ctx, w, e, key, id, d)
	})
}

// applyPostOptions overlays the flags that were given onto d
func applyPostOptions(d *drafts.Draft, in io.Reader) error {
	if postOpts.title != "" {
		d.Title = postOpts.title
	}
	if postOpts.summary != "" {
		d.Summary = postOpts.summary
	}
	if postOpts.contentFile != "" {
		content, err := readContent(postOpts.contentFile, in)
		if err != nil {
			return err
		}
		d.Content = content
	}
	if postOpts.categoryID > 0 {
		d.CategoryID = postOpts.categoryID
	}
	if len(postOpts.tagIDs) > 0 {
		d.TagIDs = postOpts.tagIDs
	}
	if postOpts.publishedSet {
		d.Published = postOpts.published
	}
	return nil
}

func readContent(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "read content", err)
	}
	return string(data), nil
}

// postInput builds the request body. HTML content is sent as rich content
// so the backend receives the markup rather than its text.
func postInput(d drafts.Draft, html bool) client.PostInput {
	content := client.RichContent{Text: d.Content}
	if html || strings.HasPrefix(strings.TrimSpace(d.Content), "<") {
		content = client.RichContent{HTML: d.Content}
	}
	return client.PostInput{
		Title:      strings.TrimSpace(d.Title),
		Content:    content,
		Summary:    strings.TrimSpace(d.Summary),
		CategoryID: d.CategoryID,
		TagIDs:     d.TagIDs,
		Published:  d.Published,
	}
}

// submitPost creates (id 0) or updates the post. A failed send keeps the
// draft under key; a successful one removes it.
func submitPost(ctx context.Context, w io.Writer, e *appEnv, key string, id int64, d drafts.Draft) int {
	if postOpts.saveDraft {
		if _, err := e.drafts.Save(key, d); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Draft saved as %s\n", key)
		return 0
	}

	var (
		post *client.Post
		err  error
	)
	if id == 0 {
		post, err = e.client.CreatePost(ctx, postInput(d, postOpts.html))
	} else {
		post, err = e.client.UpdatePost(ctx, id, postInput(d, postOpts.html))
	}
	if err != nil {
		code := fail(w, err)
		if _, serr := e.drafts.Save(key, d); serr != nil {
			slog.Warn("Cannot keep draft after failed send", "key", key, "error", serr)
			return code
		}
		if id == 0 {
			fmt.Fprintf(w, "Your input was kept as draft %s, resume with: blogctl posts create --draft %s\n", key, key)
		} else {
			fmt.Fprintf(w, "Your changes were kept, run \"blogctl posts edit %d\" again to resume\n", id)
		}
		return code
	}

	if _, err := e.drafts.Delete(key); err != nil {
		slog.Warn("Cannot remove sent draft", "key", key, "error", err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(post))
	} else if id == 0 {
		fmt.Fprintf(w, "Created post #%d: %s\n", post.ID, post.Title)
	} else {
		fmt.Fprintf(w, "Updated post #%d: %s\n", post.ID, post.Title)
	}
	return 0
}

// runPostDelete deletes a post and returns exit code
func runPostDelete(ctx context.Context, w io.Writer, in io.Reader, arg string) int {
	id, err := parseID(arg, "post")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if err := confirm(ctx, in, fmt.Sprintf("Delete post #%d?", id)); err != nil {
			return fail(w, err)
		}
		if err := e.client.DeletePost(ctx, id); err != nil {
			return fail(w, err)
		}
		if _, err := e.drafts.Delete(drafts.EditKey(id)); err != nil {
			slog.Warn("Cannot remove draft of deleted post", "id", id, "error", err)
		}
		fmt.Fprintf(w, "Deleted post #%d\n", id)
		return 0
	})
}

// formatPostsHuman formats a page of posts as a table
func formatPostsHuman(page *client.Page[client.Post]) string {
	if len(page.Content) == 0 {
		return "No posts found"
	}

	rows := make([][]string, 0, len(page.Content))
	for _, p := range page.Content {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		author := ""
		if p.Author != nil {
			author = p.Author.Username
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			category,
			author,
			yesNo(p.Published),
		})
	}

	return fmt.Sprintf("%s\nPage %d of %d · %d posts",
		renderTable([]string{"ID", "Title", "Category", "Author", "Published"}, rows),
		page.Number+1, max(1, page.TotalPages), page.TotalElements)
}

// formatPostHuman formats a post and its comments for reading
func formatPostHuman(d postDetail) string {
	p := d.Post
	var sb strings.Builder

	status := "draft"
	if p.Published {
		status = "published"
	}
	fmt.Fprintf(&sb, "#%d %s [%s]\n", p.ID, p.Title, status)

	var meta []string
	if p.Author != nil {
		meta = append(meta, "by "+p.Author.Username)
	}
	if p.CreatedAt != "" {
		meta = append(meta, p.CreatedAt)
	}
	if p.Category != nil {
		meta = append(meta, "in "+p.Category.Name)
	}
	if len(p.Tags) > 0 {
		names := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			names[i] = t.Name
		}
		meta = append(meta, "tags: "+strings.Join(names, ", "))
	}
	if len(meta) > 0 {
		sb.WriteString(strings.Join(meta, " · "))
		sb.WriteString("\n")
	}
	if p.Summary != "" {
		fmt.Fprintf(&sb, "\n%s\n", p.Summary)
	}
	fmt.Fprintf(&sb, "\n%s\n", strings.TrimSpace(postview.PlainText(p.Content)))

	if postComments {
		fmt.Fprintf(&sb, "\nComments (%d)\n", len(d.Comments))
		for _, c := range d.Comments {
			author := "anonymous"
			if c.Author != nil {
				author = c.Author.Username
			}
			fmt.Fprintf(&sb, "  #%d %s: %s\n", c.ID, author, c.Content)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
