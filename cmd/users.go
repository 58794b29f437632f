// ABOUTME: User commands: list, get, update, delete and passwd
// ABOUTME: Account administration goes through the admin route guard first

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/router"
)

var (
	userUsername string
	userEmail    string
	userAvatar   string
	userRoles    []string

	passwdStdin bool
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts (admin)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runUsersList(ctx, os.Stdout)
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runUserGet(ctx, os.Stdout, args[0])
		})
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change an account (admin)",
	Long: `Change an account. Only the fields given as flags change.

Example:
  blogctl users update 7 --role ROLE_USER --role ROLE_ADMIN`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runUserUpdate(ctx, os.Stdout, args[0])
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an account (admin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runUserDelete(ctx, os.Stdout, os.Stdin, args[0])
		})
	},
}

var usersPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Long: `Change the signed-in user's password.

In scripts pipe three lines with --stdin: current, new and confirmation.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPasswd(ctx, os.Stdout, os.Stdin)
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersUpdateCmd, usersDeleteCmd, usersPasswdCmd)

	usersUpdateCmd.Flags().StringVar(&userUsername, "username", "", "New username")
	usersUpdateCmd.Flags().StringVar(&userEmail, "email", "", "New email address")
	usersUpdateCmd.Flags().StringVar(&userAvatar, "avatar", "", "Avatar image URL")
	usersUpdateCmd.Flags().StringSliceVar(&userRoles, "role", nil, "Role, repeatable; replaces all roles")
	usersDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	usersPasswdCmd.Flags().BoolVar(&passwdStdin, "stdin", false, "Read the passwords from stdin")
}

// runUsersList lists accounts and returns exit code
func runUsersList(ctx context.Context, w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}
		users, err := e.client.ListUsers(ctx)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(users))
		} else {
			fmt.Fprintln(w, formatUsersHuman(users))
		}
		return 0
	})
}

func runUserGet(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "user")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		u, err := e.client.GetUser(ctx, id)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(u))
		} else {
			fmt.Fprintln(w, formatUserHuman(u))
		}
		return 0
	})
}

func runUserUpdate(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "user")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}

		in := client.UserUpdate{
			Username: strings.TrimSpace(userUsername),
			Email:    strings.TrimSpace(userEmail),
			Avatar:   strings.TrimSpace(userAvatar),
			Roles:    userRoles,
		}
		if in.Username == "" && in.Email == "" && in.Avatar == "" && len(in.Roles) == 0 {
			return fail(w, apperr.New(apperr.KindValidation, "update user", "nothing to change, pass at least one flag"))
		}

		u, err := e.client.UpdateUser(ctx, id, in)
		if err != nil {
			return fail(w, err)
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(u))
		} else {
			fmt.Fprintf(w, "Updated user #%d: %s\n", u.ID, u.Username)
		}
		return 0
	})
}

func runUserDelete(ctx context.Context, w io.Writer, in io.Reader, arg string) int {
	id, err := parseID(arg, "user")
	if err != nil {
		return fail(w, err)
	}

	return withEnv(w, func(e *appEnv) int {
		if !e.allow(w, router.PathAdmin) {
			return 1
		}
		if self := e.session.User(); self != nil && self.ID == id {
			return fail(w, apperr.New(apperr.KindValidation, "delete user", "refusing to delete the signed-in account"))
		}
		if err := confirm(ctx, in, fmt.Sprintf("Delete user #%d?", id)); err != nil {
			return fail(w, err)
		}
		if err := e.client.DeleteUser(ctx, id); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted user #%d\n", id)
		return 0
	})
}

// runPasswd changes the signed-in user's password and returns exit code
func runPasswd(ctx context.Context, w io.Writer, in io.Reader) int {
	return withEnv(w, func(e *appEnv) int {
		u := e.session.User()
		if !e.session.IsAuthenticated() || u == nil {
			fmt.Fprintln(w, "Error: not signed in, run \"blogctl login\" first")
			return 1
		}

		var change client.PasswordChange
		switch {
		case passwdStdin:
			lines := newLineReader(in)
			for _, f := range []struct {
				dst  *string
				what string
			}{
				{&change.CurrentPassword, "the current password"},
				{&change.NewPassword, "the new password"},
				{&change.ConfirmPassword, "the new password again"},
			} {
				v, err := lines.next(f.what)
				if err != nil {
					return fail(w, err)
				}
				*f.dst = v
			}
		case isTerminal(in):
			err := runForm(ctx,
				passwordInput("Current password", &change.CurrentPassword),
				passwordInput("New password", &change.NewPassword),
				passwordInput("Confirm new password", &change.ConfirmPassword),
			)
			if err != nil {
				return fail(w, err)
			}
		default:
			return fail(w, apperr.New(apperr.KindValidation, "change password",
				"--stdin is required when stdin is not a terminal"))
		}

		if err := e.client.ChangePassword(ctx, u.ID, change); err != nil {
			return fail(w, err)
		}
		fmt.Fprintln(w, "Password changed")
		return 0
	})
}

func formatUsersHuman(users []client.User) string {
	if len(users) == 0 {
		return "No users"
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.Email,
			strings.Join(u.Roles, ", "),
		})
	}
	return renderTable([]string{"ID", "Username", "Email", "Roles"}, rows)
}
