// ABOUTME: Session store holding the signed-in user and token
// ABOUTME: Persists credentials to durable storage and restores them at startup

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/storage"
)

// RoleAdmin marks administrators
const RoleAdmin = "ROLE_ADMIN"

// Fallback messages shown when the backend gives no reason
const (
	MsgLoginFailed       = "Login failed, please check your username and password"
	MsgGoogleLoginFailed = "Google login failed"
	MsgRegisterFailed    = "Registration failed, please try again later"
)

// Authenticator performs the credential exchanges with the backend
type Authenticator interface {
	SignIn(ctx context.Context, username, password string) (json.RawMessage, error)
	SignUp(ctx context.Context, req client.RegisterRequest) (json.RawMessage, error)
	GoogleCallback(ctx context.Context, code string) (json.RawMessage, error)
}

// Session is a point-in-time copy of the auth state
type Session struct {
	User    *client.User
	Token   string
	Loading bool
	Error   string
}

// IsAuthenticated reports whether a token is held
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the signed-in user has the admin role
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.HasRole(RoleAdmin)
}

// Store owns the Session. Safe for concurrent use.
type Store struct {
	auth        Authenticator
	store       storage.Store
	verifier    Verifier
	verifyDelay time.Duration
	logger      *slog.Logger
	schedule    func(time.Duration, func())

	verifyGroup singleflight.Group

	mu    sync.RWMutex
	state Session
	nav   client.Navigator
}

// Option configures a Store
type Option func(*Store)

// WithVerifier replaces the token check run after InitAuth
func WithVerifier(v Verifier) Option {
	return func(s *Store) { s.verifier = v }
}

// WithVerifyDelay sets how long InitAuth waits before verifying
func WithVerifyDelay(d time.Duration) Option {
	return func(s *Store) { s.verifyDelay = d }
}

// WithNavigator sets where Logout sends the user
func WithNavigator(nav client.Navigator) Option {
	return func(s *Store) { s.nav = nav }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty Store
func New(auth Authenticator, store storage.Store, opts ...Option) *Store {
	s := &Store{
		auth:        auth,
		store:       store,
		verifier:    ExpiryVerifier,
		verifyDelay: 500 * time.Millisecond,
		logger:      slog.Default(),
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNavigator wires the router once it exists
func (s *Store) SetNavigator(nav client.Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav = nav
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a token is held
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// IsAdmin reports whether the signed-in user is an administrator
func (s *Store) IsAdmin() bool {
	return s.Snapshot().IsAdmin()
}

// User returns the signed-in user, or nil
func (s *Store) User() *client.User {
	return s.Snapshot().User
}

// Token returns the held token, or ""
func (s *Store) Token() string {
	return s.Snapshot().Token
}

// Loading reports whether a credential exchange is in flight
func (s *Store) Loading() bool {
	return s.Snapshot().Loading
}

// Err returns the last user-facing failure message
func (s *Store) Err() string {
	return s.Snapshot().Error
}

// InitAuth restores the session from durable storage. It never touches the
// network; a token check is scheduled for later instead.
func (s *Store) InitAuth() {
	token, hasToken, terr := s.store.Get(storage.KeyToken)
	userJSON, hasUser, uerr := s.store.Get(storage.KeyUser)
	if err := errors.Join(terr, uerr); err != nil {
		s.logger.Warn("Stored credentials unreadable, resetting", "error", err)
		s.clearPersisted()
		s.Reset()
		return
	}

	hasToken = hasToken && token != ""
	hasUser = hasUser && userJSON != ""
	if !hasToken && !hasUser {
		s.logger.Debug("No stored credentials")
		s.Reset()
		return
	}
	if !hasToken || !hasUser {
		s.logger.Warn("Incomplete stored credentials, resetting")
		s.clearPersisted()
		s.Reset()
		return
	}

	var u client.User
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		s.logger.Warn("Stored user data is corrupt, resetting", "error", err)
		s.clearPersisted()
		s.Reset()
		return
	}

	s.mu.Lock()
	s.state.Token = token
	s.state.User = &u
	s.mu.Unlock()
	s.logger.Info("Session restored", "username", u.Username)

	s.schedule(s.verifyDelay, func() {
		s.VerifyToken(context.Background())
	})
}

// Login exchanges username and password for a session. On success the
// token and user are persisted and the raw backend response is returned.
func (s *Store) Login(ctx context.Context, username, password string) (json.RawMessage, error) {
	return s.authenticate(ctx, "login", MsgLoginFailed, func(ctx context.Context) (json.RawMessage, error) {
		return s.auth.SignIn(ctx, username, password)
	})
}

// GoogleLogin exchanges a Google authorization code for a session
func (s *Store) GoogleLogin(ctx context.Context, code string) (json.RawMessage, error) {
	return s.authenticate(ctx, "google login", MsgGoogleLoginFailed, func(ctx context.Context) (json.RawMessage, error) {
		return s.auth.GoogleCallback(ctx, code)
	})
}

func (s *Store) authenticate(ctx context.Context, op, fallback string, exchange func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	s.begin()
	defer s.end()

	raw, err := exchange(ctx)
	if err != nil {
		return nil, s.fail(op, fallback, apperr.KindAuth, err)
	}

	resp, err := DecodeAuthResponse(raw)
	if err != nil {
		s.logger.Error("Unexpected login response", "op", op, "error", err)
		return nil, s.fail(op, fallback, apperr.KindAuth, apperr.Wrap(apperr.KindAuth, op, err))
	}

	if err := s.store.Set(storage.KeyToken, resp.Token); err != nil {
		return nil, s.fail(op, fallback, apperr.KindPersistence, err)
	}
	if err := s.store.Set(storage.KeyUser, string(resp.UserJSON)); err != nil {
		s.clearPersisted()
		return nil, s.fail(op, fallback, apperr.KindPersistence, err)
	}

	user := resp.User
	s.mu.Lock()
	s.state.Token = resp.Token
	s.state.User = &user
	s.mu.Unlock()

	s.logger.Info("Signed in", "op", op, "username", user.Username, "shape", resp.Shape)
	return raw, nil
}

// Register creates an account. It does not sign the user in.
func (s *Store) Register(ctx context.Context, req client.RegisterRequest) (json.RawMessage, error) {
	s.begin()
	defer s.end()

	raw, err := s.auth.SignUp(ctx, req)
	if err != nil {
		return nil, s.fail("register", MsgRegisterFailed, apperr.KindUnknown, err)
	}
	s.logger.Info("Registered account", "username", req.Username)
	return raw, nil
}

// Logout clears the session and persisted credentials, then goes to login
func (s *Store) Logout() {
	s.Reset()
	s.clearPersisted()
	s.logger.Info("Signed out")

	s.mu.RLock()
	nav := s.nav
	s.mu.RUnlock()
	if nav != nil {
		nav.Redirect(client.LoginPath)
	}
}

// Reset clears the in-memory state only
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Session{}
}

// VerifyToken checks the held token. A rejected token clears the session;
// the failure is logged and never surfaced. Concurrent calls share one check.
func (s *Store) VerifyToken(ctx context.Context) bool {
	v, _, _ := s.verifyGroup.Do("verify", func() (any, error) {
		token := s.Token()
		if token == "" {
			return false, nil
		}
		if err := s.verifier(ctx, token); err != nil {
			s.logger.Warn("Token verification failed, clearing session", "error", err)
			s.mu.Lock()
			stale := s.state.Token == token
			if stale {
				s.state = Session{}
			}
			s.mu.Unlock()
			if stale {
				s.clearPersisted()
			}
			return false, nil
		}
		s.logger.Debug("Token verified")
		return true, nil
	})
	return v.(bool)
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = true
	s.state.Error = ""
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
}

// fail records the user-facing message and returns an error that prints as it
func (s *Store) fail(op, fallback string, kind apperr.Kind, err error) error {
	msg := userMessage(err, fallback)
	s.mu.Lock()
	s.state.Error = msg
	s.mu.Unlock()

	if k := apperr.KindOf(err); k != apperr.KindUnknown {
		kind = k
	}
	s.logger.Warn("Auth operation failed", "op", op, "kind", kind, "error", err)
	return &apperr.Error{Kind: kind, Op: op, Message: msg, Err: err}
}

// userMessage prefers validation detail, then the backend's message
func userMessage(err error, fallback string) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind == apperr.KindValidation && e.Message != "" {
		return e.Message
	}
	return apperr.UserMessage(err, fallback)
}

func (s *Store) clearPersisted() {
	if err := s.store.Remove(storage.KeyToken, storage.KeyUser); err != nil {
		s.logger.Warn("Failed to clear stored credentials", "error", err)
	}
}
