// ABOUTME: Account commands: login, logout, register and whoami
// ABOUTME: Drive the session store so the saved session is shared with the TUI

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/router"
	"github.com/nilmcc/blogctl/internal/session"
)

var (
	loginUsername      string
	loginPasswordStdin bool
	loginGoogle        bool
	loginCode          string

	registerUsername      string
	registerEmail         string
	registerFullName      string
	registerPasswordStdin bool

	whoamiVerify  bool
	whoamiRefresh bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	Long: `Sign in with a username and password, or with Google.

In a terminal a form asks for missing credentials. In scripts pass
--username and pipe the password with --password-stdin.

Example:
  echo "$BLOG_PASSWORD" | blogctl login --username alice --password-stdin
  blogctl login --google`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runLogin(ctx, os.Stdout, os.Stdin)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runLogout(os.Stdout)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account. Registration does not sign you in.

Example:
  echo "$PASSWORD" | blogctl register --username alice --email alice@example.com --password-stdin`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runRegister(ctx, os.Stdout, os.Stdin)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the signed-in user from the saved session.

Exit codes:
  0 - Signed in
  1 - Not signed in, or the session is no longer valid
  2 - Error`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runWhoami(ctx, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.Flags().BoolVar(&loginGoogle, "google", false, "Sign in with Google")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Google authorization code, skips the browser step")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Username (3-20 characters)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerFullName, "full-name", "", "Display name")
	registerCmd.Flags().BoolVar(&registerPasswordStdin, "password-stdin", false, "Read the password from stdin")

	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "Check that the saved token is still valid")
	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Fetch the profile from the backend")
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, in io.Reader) int {
	return withEnv(w, func(e *appEnv) int {
		// Sign-in happens on the login route, where a rejected attempt
		// leaves an existing session alone
		e.router.Navigate(router.PathLogin)

		if loginGoogle || loginCode != "" {
			return googleLogin(ctx, w, in, e)
		}

		username, password, err := loginCredentials(ctx, in)
		if err != nil {
			return fail(w, err)
		}
		if _, err := e.session.Login(ctx, username, password); err != nil {
			return fail(w, err)
		}
		return printSignedIn(w, e.session.User())
	})
}

func loginCredentials(ctx context.Context, in io.Reader) (string, string, error) {
	username := strings.TrimSpace(loginUsername)
	var password string

	switch {
	case username != "" && loginPasswordStdin:
		p, err := newLineReader(in).next("a password")
		if err != nil {
			return "", "", err
		}
		password = p
	case isTerminal(in):
		err := runForm(ctx,
			huh.NewInput().Title("Username").Value(&username).Validate(required("username")),
			passwordInput("Password", &password),
		)
		if err != nil {
			return "", "", err
		}
	default:
		return "", "", apperr.New(apperr.KindValidation, "login",
			"--username and --password-stdin are required when stdin is not a terminal")
	}

	if username == "" || password == "" {
		return "", "", apperr.New(apperr.KindValidation, "login", "username and password are required")
	}
	return username, password, nil
}

func googleLogin(ctx context.Context, w io.Writer, in io.Reader, e *appEnv) int {
	code := loginCode
	if code == "" {
		if !e.cfg.GoogleConfigured() {
			return fail(w, apperr.New(apperr.KindValidation, "google login",
				"Google sign-in is not configured, set GOOGLE_CLIENT_ID and GOOGLE_REDIRECT_URL or pass --code"))
		}
		authURL := client.GoogleAuthURL(e.cfg.GoogleClientID, e.cfg.GoogleRedirectURL, uuid.NewString())
		fmt.Fprintf(w, "Open this URL to sign in with Google:\n\n  %s\n\nPaste the code or the URL you were redirected to: ", authURL)

		line, err := newLineReader(in).next("an authorization code")
		if err != nil {
			fmt.Fprintln(w)
			return fail(w, err)
		}
		code = line
	}

	code = extractCode(code)
	if code == "" {
		return fail(w, apperr.New(apperr.KindValidation, "google login", "authorization code is empty"))
	}
	if _, err := e.session.GoogleLogin(ctx, code); err != nil {
		return fail(w, err)
	}
	return printSignedIn(w, e.session.User())
}

func printSignedIn(w io.Writer, u *client.User) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(u))
	} else {
		fmt.Fprintf(w, "Signed in as %s\n", describeUser(u))
	}
	return 0
}

// runLogout clears the saved session and returns exit code
func runLogout(w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		if !e.session.IsAuthenticated() {
			fmt.Fprintln(w, "Not signed in")
			return 0
		}
		name := describeUser(e.session.User())
		e.session.Logout()
		fmt.Fprintf(w, "Signed out %s\n", name)
		return 0
	})
}

// runRegister creates an account and returns exit code
func runRegister(ctx context.Context, w io.Writer, in io.Reader) int {
	return withEnv(w, func(e *appEnv) int {
		req := client.RegisterRequest{
			Username: strings.TrimSpace(registerUsername),
			Email:    strings.TrimSpace(registerEmail),
			FullName: strings.TrimSpace(registerFullName),
		}

		switch {
		case registerPasswordStdin:
			p, err := newLineReader(in).next("a password")
			if err != nil {
				return fail(w, err)
			}
			req.Password = p
		case isTerminal(in):
			var confirm string
			err := runForm(ctx,
				huh.NewInput().Title("Username").Value(&req.Username).Validate(required("username")),
				huh.NewInput().Title("Email").Value(&req.Email).Validate(required("email")),
				huh.NewInput().Title("Full name").Value(&req.FullName),
				passwordInput("Password", &req.Password),
				passwordInput("Confirm password", &confirm).Validate(func(s string) error {
					if s != req.Password {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}),
			)
			if err != nil {
				return fail(w, err)
			}
		default:
			return fail(w, apperr.New(apperr.KindValidation, "register",
				"--password-stdin is required when stdin is not a terminal"))
		}

		raw, err := e.session.Register(ctx, req)
		if err != nil {
			return fail(w, err)
		}
		if IsJSONOutput() {
			fmt.Fprintln(w, string(raw))
			return 0
		}
		fmt.Fprintf(w, "Account %s created. Sign in with \"blogctl login\".\n", req.Username)
		return 0
	})
}

// runWhoami shows the saved session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	return withEnv(w, func(e *appEnv) int {
		if !e.session.IsAuthenticated() {
			fmt.Fprintln(w, "Not signed in")
			return 1
		}
		if whoamiVerify && !e.session.VerifyToken(ctx) {
			fmt.Fprintln(w, "Session expired, sign in again")
			return 1
		}

		u := e.session.User()
		if whoamiRefresh {
			fresh, err := e.client.CurrentUser(ctx)
			if err != nil {
				return fail(w, err)
			}
			u = fresh
		}

		if IsJSONOutput() {
			fmt.Fprintln(w, formatJSON(u))
		} else {
			fmt.Fprintln(w, formatUserHuman(u))
		}
		return 0
	})
}

func describeUser(u *client.User) string {
	if u == nil {
		return "unknown user"
	}
	if u.HasRole(session.RoleAdmin) {
		return u.Username + " (admin)"
	}
	return u.Username
}

// formatUserHuman formats a user profile for human readability
func formatUserHuman(u *client.User) string {
	if u == nil {
		return "No user"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:        %d\n", u.ID)
	fmt.Fprintf(&sb, "Username:  %s\n", u.Username)
	fmt.Fprintf(&sb, "Email:     %s\n", u.Email)
	if u.FullName != "" {
		fmt.Fprintf(&sb, "Name:      %s\n", u.FullName)
	}
	fmt.Fprintf(&sb, "Roles:     %s\n", strings.Join(u.Roles, ", "))
	fmt.Fprintf(&sb, "Admin:     %s", yesNo(u.HasRole(session.RoleAdmin)))
	return sb.String()
}
