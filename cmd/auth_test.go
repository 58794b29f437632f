// ABOUTME: Tests for the login, logout, register and whoami commands
// ABOUTME: Verifies the saved session, piped credentials and exit codes

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nilmcc/blogctl/internal/storage"
)

func TestLogin_PasswordStdin(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/auth/signin", http.StatusOK, `{"token":"tok-1","user":`+aliceJSON+`}`)
	dir := setupCmdTest(t, api)

	loginUsername = "alice"
	loginPasswordStdin = true

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, strings.NewReader("s3cret\n"))

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Signed in as alice") {
		t.Errorf("expected greeting, got %q", buf.String())
	}
	if body := api.last().body; !strings.Contains(body, `"password":"s3cret"`) {
		t.Errorf("expected password without newline in request, got %s", body)
	}

	token, ok, err := storage.NewFile(dir).Get(storage.KeyToken)
	if err != nil || !ok || token != "tok-1" {
		t.Errorf("expected token saved, got %q ok=%v err=%v", token, ok, err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/auth/signin", http.StatusUnauthorized, `{"message":"Bad credentials"}`)
	dir := setupCmdTest(t, api)

	loginUsername = "alice"
	loginPasswordStdin = true

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, strings.NewReader("wrong"))

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Bad credentials") {
		t.Errorf("expected backend message, got %q", buf.String())
	}
	if _, ok, _ := storage.NewFile(dir).Get(storage.KeyToken); ok {
		t.Error("expected no token saved")
	}
}

func TestLogin_FailureKeepsSavedSession(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		setup   func()
	}{
		{
			name:    "password",
			pattern: "POST /api/auth/signin",
			setup: func() {
				loginUsername = "alice"
				loginPasswordStdin = true
			},
		},
		{
			name:    "google",
			pattern: "POST /api/auth/oauth2/google/callback",
			setup:   func() { loginCode = "expired-code" },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			api.handle(tc.pattern, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
			dir := setupCmdTest(t, api)
			signInAs(t, dir, "bob-token", `{"id":2,"username":"bob","roles":["ROLE_USER"]}`)
			tc.setup()

			var buf bytes.Buffer
			if exitCode := runLogin(context.Background(), &buf, strings.NewReader("wrong\n")); exitCode != 1 {
				t.Errorf("expected exit code 1, got %d: %s", exitCode, buf.String())
			}

			store := storage.NewFile(dir)
			if token, ok, _ := store.Get(storage.KeyToken); !ok || token != "bob-token" {
				t.Errorf("expected saved token kept, got %q ok=%v", token, ok)
			}
			if _, ok, _ := store.Get(storage.KeyUser); !ok {
				t.Error("expected saved user kept")
			}
		})
	}
}

func TestLogin_NoTerminalNeedsFlags(t *testing.T) {
	api := newFakeAPI()
	setupCmdTest(t, api)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, strings.NewReader(""))

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "--password-stdin") {
		t.Errorf("expected usage hint, got %q", buf.String())
	}
	if api.count() != 0 {
		t.Error("expected no request to the backend")
	}
}

func TestLogin_GoogleCode(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/auth/oauth2/google/callback", http.StatusOK, `{"token":"g-tok","user":`+aliceJSON+`}`)
	setupCmdTest(t, api)

	loginCode = "http://localhost:3000/oauth/callback?code=abc123&state=x"

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, strings.NewReader(""))

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if body := api.last().body; !strings.Contains(body, `"code":"abc123"`) {
		t.Errorf("expected code extracted from URL, got body %s", body)
	}
}

func TestLogin_GoogleNotConfigured(t *testing.T) {
	setupCmdTest(t, newFakeAPI())
	loginGoogle = true

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, strings.NewReader(""))

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "GOOGLE_CLIENT_ID") {
		t.Errorf("expected configuration hint, got %q", buf.String())
	}
}

func TestLogin_GooglePrintsConsentURL(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/auth/oauth2/google/callback", http.StatusOK, `{"token":"g-tok","user":`+aliceJSON+`}`)
	setupCmdTest(t, api)
	t.Setenv("GOOGLE_CLIENT_ID", "client-1")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:3000/oauth/callback")
	loginGoogle = true

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, strings.NewReader("abc123\n"))

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "accounts.google.com") || !strings.Contains(buf.String(), "client_id=client-1") {
		t.Errorf("expected consent URL, got %q", buf.String())
	}
}

func TestLogout(t *testing.T) {
	dir := setupCmdTest(t, newFakeAPI())
	signInAs(t, dir, "tok-1", aliceJSON)

	var buf bytes.Buffer
	if exitCode := runLogout(&buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Signed out alice") {
		t.Errorf("expected confirmation, got %q", buf.String())
	}

	store := storage.NewFile(dir)
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if _, ok, _ := store.Get(key); ok {
			t.Errorf("expected %s removed", key)
		}
	}
}

func TestLogout_NotSignedIn(t *testing.T) {
	setupCmdTest(t, newFakeAPI())

	var buf bytes.Buffer
	if exitCode := runLogout(&buf); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Not signed in") {
		t.Errorf("expected notice, got %q", buf.String())
	}
}

func TestRegister(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/auth/signup", http.StatusOK, `{"message":"User registered successfully!"}`)
	dir := setupCmdTest(t, api)

	registerUsername = "bob"
	registerEmail = "bob@example.com"
	registerPasswordStdin = true

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), &buf, strings.NewReader("hunter22\n"))

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Account bob created") {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
	if _, ok, _ := storage.NewFile(dir).Get(storage.KeyToken); ok {
		t.Error("expected registration not to sign in")
	}
}

func TestRegister_InvalidEmailNeverSent(t *testing.T) {
	api := newFakeAPI()
	setupCmdTest(t, api)

	registerUsername = "bob"
	registerEmail = "not-an-email"
	registerPasswordStdin = true

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), &buf, strings.NewReader("hunter22\n"))

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d: %s", exitCode, buf.String())
	}
	if api.count() != 0 {
		t.Error("expected validation to fail before any request")
	}
}

func TestWhoami(t *testing.T) {
	dir := setupCmdTest(t, newFakeAPI())
	signInAs(t, dir, "tok-1", adminJSON)

	var buf bytes.Buffer
	if exitCode := runWhoami(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	for _, expected := range []string{"root", "root@example.com", "ROLE_ADMIN", "Admin:     yes"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, buf.String())
		}
	}
}

func TestWhoami_NotSignedIn(t *testing.T) {
	setupCmdTest(t, newFakeAPI())

	var buf bytes.Buffer
	if exitCode := runWhoami(context.Background(), &buf); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestWhoami_Verify(t *testing.T) {
	sign := func(exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "alice",
			"exp": exp.Unix(),
		}).SignedString([]byte("test-key"))
		if err != nil {
			t.Fatal(err)
		}
		return token
	}

	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{"valid token", sign(time.Now().Add(time.Hour)), 0},
		{"expired token", sign(time.Now().Add(-time.Hour)), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := setupCmdTest(t, newFakeAPI())
			signInAs(t, dir, tc.token, aliceJSON)
			whoamiVerify = true

			var buf bytes.Buffer
			if exitCode := runWhoami(context.Background(), &buf); exitCode != tc.expected {
				t.Errorf("expected exit code %d, got %d: %s", tc.expected, exitCode, buf.String())
			}
		})
	}
}

func TestWhoami_RefreshSendsToken(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/users/me", http.StatusOK, `{"id":1,"username":"alice","email":"new@example.com","roles":["ROLE_USER"]}`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)
	whoamiRefresh = true

	var buf bytes.Buffer
	if exitCode := runWhoami(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "new@example.com") {
		t.Errorf("expected refreshed profile, got %q", buf.String())
	}
	if auth := api.last().auth; auth != "Bearer tok-1" {
		t.Errorf("expected bearer token, got %q", auth)
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc123", "abc123"},
		{"  abc123\n", "abc123"},
		{"http://localhost:3000/oauth/callback?code=xyz&state=s", "xyz"},
		{"?code=qq", "qq"},
		{"code=rr&state=s", "rr"},
	}

	for _, tt := range tests {
		if got := extractCode(tt.input); got != tt.expected {
			t.Errorf("extractCode(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
