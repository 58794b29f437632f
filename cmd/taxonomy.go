// ABOUTME: Category and tag commands
// ABOUTME: Listing is public, changes are administrator operations

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/router"
)

var (
	categoryName        string
	categoryDescription string
	tagName             string
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "Browse and manage categories",
}

var tagsCmd = &cobra.Command{
	Use:     "tags",
	Aliases: []string{"tag"},
	Short:   "Browse and manage tags",
}

func init() {
	rootCmd.AddCommand(categoriesCmd, tagsCmd)

	categoriesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runWithSignals(func(ctx context.Context) int {
					return runCategoriesList(ctx, os.Stdout)
				})
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show a category",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				runWithSignals(func(ctx context.Context) int {
					return runCategoryGet(ctx, os.Stdout, args[0])
				})
			},
		},
	)

	categoryCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a category (admin)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runWithSignals(func(ctx context.Context) int {
				return runCategorySave(ctx, os.Stdout, "")
			})
		},
	}
	categoryUpdateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Rename or describe a category (admin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runWithSignals(func(ctx context.Context) int {
				return runCategorySave(ctx, os.Stdout, args[0])
			})
		},
	}
	for _, c := range []*cobra.Command{categoryCreateCmd, categoryUpdateCmd} {
		c.Flags().StringVar(&categoryName, "name", "", "Category name")
		c.Flags().StringVar(&categoryDescription, "description", "", "Category description")
	}
	categoryDeleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category (admin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runWithSignals(func(ctx context.Context) int {
				return runCategoryDelete(ctx, os.Stdout, os.Stdin, args[0])
			})
		},
	}
	categoryDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	categoriesCmd.AddCommand(categoryCreateCmd, categoryUpdateCmd, categoryDeleteCmd)

	tagsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tags",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runWithSignals(func(ctx context.Context) int {
					return runTagsList(ctx, os.Stdout)
				})
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show a tag",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				runWithSignals(func(ctx context.Context) int {
					return runTagGet(ctx, os.Stdout, args[0])
				})
			},
		},
	)

	tagCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a tag (admin)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runWithSignals(func(ctx context.Context) int {
				return runTagSave(ctx, os.Stdout, "")
			})
		},
	}
	tagUpdateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Rename a tag (admin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runWithSignals(func(ctx context.Context) int {
				return runTagSave(ctx, os.Stdout, args[0])
			})
		},
	}
	for _, c := range []*cobra.Command{tagCreateCmd, tagUpdateCmd} {
		c.Flags().StringVar(&tagName, "name", "", "Tag name")
	}
	tagDeleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tag (admin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runWithSignals(func(ctx context.Context) int {
				return runTagDelete(ctx, os.Stdout, os.Stdin, args[0])
			})
		},
	}
	tagDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	tagsCmd.AddCommand(tagCreateCmd, tagUpdateCmd, tagDeleteCmd)
}

// runCategoriesList lists categories and returns exit code
func runCategoriesList(ctx context.Context, w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		cats, err := e.client.ListCategories(ctx)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(cats))
		} else {
			fmt.Fprintln(w, formatCategoriesHuman(cats))
		}
		return 0
	})
}

func runCategoryGet(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "category")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		cat, err := e.client.GetCategory(ctx, id)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(cat))
		} else {
			fmt.Fprintln(w, formatCategoriesHuman([]client.Category{*cat}))
		}
		return 0
	})
}

// runCategorySave creates a category, or updates it when arg names one
func runCategorySave(ctx context.Context, w io.Writer, arg string) int {
	var id int64
	if arg != "" {
		var err error
		if id, err = parseID(arg, "category"); err != nil {
			return fail(w, err)
		}
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}

		in := client.CategoryInput{Name: categoryName, Description: categoryDescription}
		var (
			cat *client.Category
			err error
		)
		if id == 0 {
			cat, err = e.client.CreateCategory(ctx, in)
		} else {
			cat, err = e.client.UpdateCategory(ctx, id, in)
		}
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(cat))
		} else {
			fmt.Fprintf(w, "Saved category #%d: %s\n", cat.ID, cat.Name)
		}
		return 0
	})
}

func runCategoryDelete(ctx context.Context, w io.Writer, in io.Reader, arg string) int {
	id, err := parseID(arg, "category")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}
		if err := confirm(ctx, in, fmt.Sprintf("Delete category #%d?", id)); err != nil {
			return fail(w, err)
		}
		if err := e.client.DeleteCategory(ctx, id); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted category #%d\n", id)
		return 0
	})
}

// runTagsList lists tags and returns exit code
func runTagsList(ctx context.Context, w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		tags, err := e.client.ListTags(ctx)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(tags))
		} else {
			fmt.Fprintln(w, formatTagsHuman(tags))
		}
		return 0
	})
}

func runTagGet(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "tag")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		tag, err := e.client.GetTag(ctx, id)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(tag))
		} else {
			fmt.Fprintln(w, formatTagsHuman([]client.Tag{*tag}))
		}
		return 0
	})
}

// runTagSave creates a tag, or renames it when arg names one
func runTagSave(ctx context.Context, w io.Writer, arg string) int {
	var id int64
	if arg != "" {
		var err error
		if id, err = parseID(arg, "tag"); err != nil {
			return fail(w, err)
		}
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}

		in := client.TagInput{Name: tagName}
		var (
			tag *client.Tag
			err error
		)
		if id == 0 {
			tag, err = e.client.CreateTag(ctx, in)
		} else {
			tag, err = e.client.UpdateTag(ctx, id, in)
		}
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(tag))
		} else {
			fmt.Fprintf(w, "Saved tag #%d: %s\n", tag.ID, tag.Name)
		}
		return 0
	})
}

func runTagDelete(ctx context.Context, w io.Writer, in io.Reader, arg string) int {
	id, err := parseID(arg, "tag")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}
		if err := confirm(ctx, in, fmt.Sprintf("Delete tag #%d?", id)); err != nil {
			return fail(w, err)
		}
		if err := e.client.DeleteTag(ctx, id); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted tag #%d\n", id)
		return 0
	})
}

func formatCategoriesHuman(cats []client.Category) string {
	if len(cats) == 0 {
		return "No categories"
	}
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, strconv.Itoa(c.PostCount), c.Description})
	}
	return renderTable([]string{"ID", "Name", "Posts", "Description"}, rows)
}

func formatTagsHuman(tags []client.Tag) string {
	if len(tags) == 0 {
		return "No tags"
	}
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Name, strconv.Itoa(t.PostCount)})
	}
	return renderTable([]string{"ID", "Name", "Posts"}, rows)
}
