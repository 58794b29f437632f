// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests route-bound screens, guarded transitions and the 401 redirect path

package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/drafts"
	"github.com/nilmcc/blogctl/internal/logger"
	"github.com/nilmcc/blogctl/internal/router"
	"github.com/nilmcc/blogctl/internal/session"
	"github.com/nilmcc/blogctl/internal/storage"
	"github.com/nilmcc/blogctl/internal/tui/authform"
	"github.com/nilmcc/blogctl/internal/tui/editor"
	"github.com/nilmcc/blogctl/internal/tui/menu"
	"github.com/nilmcc/blogctl/internal/tui/postlist"
)

const adminLogin = `{"token":"tok-1","user":{"id":1,"username":"alice","email":"alice@example.com","roles":["ROLE_USER","ROLE_ADMIN"]}}`

const postsPage = `{"content":[{"id":5,"title":"Hello","content":"<p>hi</p>","published":true},{"id":6,"title":"World","content":"x","published":true}],"totalElements":12,"totalPages":2,"number":0,"last":false}`

// backend is a fake blog API recording the queries it saw
type backend struct {
	mu       sync.Mutex
	queries  []string
	usersFor int // status for /users, 0 means 200
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(adminLogin))
	})
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		w.Write([]byte(postsPage))
	})
	mux.HandleFunc("GET /api/posts/search", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		w.Write([]byte(`{"content":[],"totalElements":0,"totalPages":0,"number":0,"last":true}`))
	})
	mux.HandleFunc("GET /api/posts/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":5,"title":"Hello","content":"<p>hi</p>","published":true}`))
	})
	mux.HandleFunc("GET /api/posts/5/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"content":"first!","postId":5}]`))
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Go"}]`))
	})
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":2,"name":"tui"}]`))
	})
	mux.HandleFunc("GET /api/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"id":1}],"totalElements":1}`))
	})
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status := b.usersFor
		b.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"Full authentication is required"}`))
			return
		}
		w.Write([]byte(`[{"id":1,"username":"alice","roles":["ROLE_ADMIN"]}]`))
	})
	return mux
}

func (b *backend) lastQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) == 0 {
		return ""
	}
	return b.queries[len(b.queries)-1]
}

type testEnv struct {
	app     *App
	router  *router.Router
	session *session.Store
	store   storage.Store
	drafts  *drafts.Store
	backend *backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b := &backend{}
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)

	log := logger.Discard()
	store := storage.NewFile(t.TempDir())
	c := client.New(server.URL+"/api",
		client.WithStore(store),
		client.WithRedirectDelay(0),
		client.WithLogger(log),
	)
	s := session.New(c, store, session.WithLogger(log))
	r := router.New(s, log)
	c.SetNavigator(r)
	s.SetNavigator(r)
	c.OnUnauthorized(s.Reset)

	d := drafts.New(store)
	app := New(Deps{Client: c, Session: s, Router: r, Drafts: d})
	app.Update(tea.WindowSizeMsg{Width: 101, Height: 40})

	return &testEnv{app: app, router: r, session: s, store: store, drafts: d, backend: b}
}

// apply feeds msg to the app and returns the follow-up command
func (e *testEnv) apply(msg tea.Msg) tea.Cmd {
	_, cmd := e.app.Update(msg)
	return cmd
}

// load runs a data-loading command and feeds its result back
func (e *testEnv) load(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a loading command")
	}
	return e.apply(cmd())
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	e.app.navigate(router.PathLogin)
	e.load(t, e.apply(authform.SubmitMsg{Username: "alice", Password: "pw"}))
	if !e.session.IsAdmin() {
		t.Fatal("expected admin session after sign-in")
	}
}

func TestScreenConstants(t *testing.T) {
	if ScreenMenu != 0 {
		t.Errorf("expected ScreenMenu to be 0, got %d", ScreenMenu)
	}
	if ScreenPosts != 1 {
		t.Errorf("expected ScreenPosts to be 1, got %d", ScreenPosts)
	}
	if ScreenNotFound != 7 {
		t.Errorf("expected ScreenNotFound to be 7, got %d", ScreenNotFound)
	}
}

func TestAppInitLoadsHome(t *testing.T) {
	e := newTestEnv(t)

	e.load(t, e.app.Init())

	if e.app.screen != ScreenPosts {
		t.Fatalf("expected ScreenPosts, got %d", e.app.screen)
	}
	view := e.app.View()
	for _, want := range []string{"Latest posts", "Hello", "World", "Page 1 of 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
	if e.app.lastUpdate.IsZero() {
		t.Error("expected last update recorded")
	}
}

func TestAppStartLocation(t *testing.T) {
	e := newTestEnv(t)
	e.app.start = "/about"

	if cmd := e.app.Init(); cmd != nil {
		t.Error("expected no loading for about")
	}
	if e.app.screen != ScreenAbout {
		t.Errorf("expected ScreenAbout, got %d", e.app.screen)
	}
}

func TestAppPagingNavigates(t *testing.T) {
	e := newTestEnv(t)
	e.load(t, e.app.Init())

	e.load(t, e.apply(postlist.PageMsg{Page: 1}))

	if e.router.Current() != "/?page=1" {
		t.Errorf("expected router at /?page=1, got %s", e.router.Current())
	}
	if !strings.Contains(e.backend.lastQuery(), "page=1") {
		t.Errorf("expected page=1 sent, got %q", e.backend.lastQuery())
	}
}

func TestAppSearch(t *testing.T) {
	e := newTestEnv(t)

	e.load(t, e.apply(postlist.SearchMsg{Query: "go tui"}))

	if e.app.match.Route.Name != router.RouteSearch {
		t.Fatalf("expected search route, got %s", e.app.match.Route.Name)
	}
	if !strings.Contains(e.backend.lastQuery(), "go+tui") {
		t.Errorf("expected query sent, got %q", e.backend.lastQuery())
	}
	if !strings.Contains(e.app.View(), "No posts found") {
		t.Error("expected empty result message")
	}
}

func TestAppSearchWithoutQueryFocusesBox(t *testing.T) {
	e := newTestEnv(t)

	e.app.navigate("/search")

	if e.app.postList == nil || !e.app.postList.Searching() {
		t.Error("expected search box focused")
	}
}

func TestAppStaleListingIgnored(t *testing.T) {
	e := newTestEnv(t)
	e.load(t, e.app.Init())

	e.apply(postsLoadedMsg{location: "/tag/9", page: &client.Page[client.Post]{}})

	if !strings.Contains(e.app.View(), "Hello") {
		t.Error("expected listing for another location to be ignored")
	}
}

func TestAppOpenPost(t *testing.T) {
	e := newTestEnv(t)

	e.load(t, e.apply(postlist.PostSelectedMsg{ID: 5}))

	if e.app.screen != ScreenPost {
		t.Fatalf("expected ScreenPost, got %d", e.app.screen)
	}
	view := e.app.View()
	if !strings.Contains(view, "Hello") || !strings.Contains(view, "first!") {
		t.Errorf("expected post and comment rendered, got:\n%s", view)
	}
}

func TestAppGuardSendsGuestToLoginThenBack(t *testing.T) {
	e := newTestEnv(t)

	e.app.navigate("/posts/create")
	if e.app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin for guest, got %d", e.app.screen)
	}
	if e.app.afterLogin != "/posts/create" {
		t.Errorf("expected intended location remembered, got %q", e.app.afterLogin)
	}

	// Sign in, then the editor loads taxonomy
	loadEditor := e.load(t, e.apply(authform.SubmitMsg{Username: "alice", Password: "pw"}))
	if e.app.screen != ScreenEditor {
		t.Fatalf("expected ScreenEditor after sign-in, got %d", e.app.screen)
	}
	e.load(t, loadEditor)
	if e.app.editor == nil {
		t.Fatal("expected editor created")
	}
	if len(e.app.categories) != 1 || len(e.app.tags) != 1 {
		t.Errorf("expected taxonomy loaded, got %d/%d", len(e.app.categories), len(e.app.tags))
	}
}

func TestAppAdminGuard(t *testing.T) {
	e := newTestEnv(t)

	e.app.navigate("/admin")
	if e.app.screen != ScreenLogin {
		t.Fatalf("expected guest sent to login, got %d", e.app.screen)
	}

	e.signIn(t)
	e.load(t, e.app.navigate("/admin"))
	if e.app.screen != ScreenAdmin {
		t.Fatalf("expected ScreenAdmin, got %d", e.app.screen)
	}
	if !strings.Contains(e.app.View(), "Site Overview") {
		t.Error("expected overview rendered")
	}
}

func TestAppUnauthorizedRedirectArrivesAsNavigation(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t)

	navigated := make(chan router.Match, 4)
	unsubscribe := e.router.Subscribe(func(m router.Match) { navigated <- m })
	defer unsubscribe()

	cmd := e.app.navigate("/admin")
	<-navigated // the app's own navigation

	e.backend.mu.Lock()
	e.backend.usersFor = http.StatusUnauthorized
	e.backend.mu.Unlock()

	e.load(t, cmd)
	if e.app.err == nil {
		t.Error("expected overview error shown")
	}

	select {
	case m := <-navigated:
		if m.Path != router.PathLogin {
			t.Fatalf("expected redirect to login, got %s", m.Path)
		}
		e.apply(navigatedMsg{match: m})
	case <-time.After(2 * time.Second):
		t.Fatal("expected redirect after 401")
	}

	if e.app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after redirect, got %d", e.app.screen)
	}
	if e.session.IsAuthenticated() {
		t.Error("expected session cleared")
	}
	if _, ok, _ := e.store.Get(storage.KeyToken); ok {
		t.Error("expected stored token removed")
	}
}

func TestAppNavigatedMsgForCurrentLocationIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	e.app.navigate("/about")

	if cmd := e.apply(navigatedMsg{match: e.router.CurrentMatch()}); cmd != nil {
		t.Error("expected no re-entry for the current location")
	}
}

func TestAppLoginFailureShowsMessage(t *testing.T) {
	e := newTestEnv(t)
	e.app.navigate(router.PathLogin)

	e.apply(loginDoneMsg{err: apperr.New(apperr.KindAuth, "login", "Bad credentials")})

	if e.app.screen != ScreenLogin {
		t.Fatalf("expected to stay on login, got %d", e.app.screen)
	}
	if !strings.Contains(e.app.View(), "Bad credentials") {
		t.Error("expected failure message on the form")
	}
}

func TestAppMenuLogout(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t)

	e.apply(menu.SelectedMsg{Target: menu.ActionLogout})

	if e.session.IsAuthenticated() {
		t.Error("expected signed out")
	}
	if e.app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after logout, got %d", e.app.screen)
	}
	if _, ok, _ := e.store.Get(storage.KeyUser); ok {
		t.Error("expected stored user removed")
	}
}

func TestAppMenuCancelRestoresScreen(t *testing.T) {
	e := newTestEnv(t)
	e.app.navigate("/about")

	e.app.openMenu()
	if e.app.screen != ScreenMenu {
		t.Fatalf("expected ScreenMenu, got %d", e.app.screen)
	}
	e.apply(menu.CancelledMsg{})
	if e.app.screen != ScreenAbout {
		t.Errorf("expected ScreenAbout restored, got %d", e.app.screen)
	}
}

func TestAppMenuQuit(t *testing.T) {
	e := newTestEnv(t)

	cmd := e.apply(menu.SelectedMsg{Target: menu.ActionQuit})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestAppSavedPostClearsDraft(t *testing.T) {
	e := newTestEnv(t)
	key := drafts.NewPostKey()
	if _, err := e.drafts.Save(key, drafts.Draft{Title: "unsent"}); err != nil {
		t.Fatal(err)
	}

	e.load(t, e.apply(postSavedMsg{key: key, post: &client.Post{ID: 5}}))

	if _, ok := e.drafts.Get(key); ok {
		t.Error("expected draft deleted after save")
	}
	if e.router.Current() != "/post/5" {
		t.Errorf("expected navigation to the post, got %s", e.router.Current())
	}
}

func TestAppFailedSaveReopensEditor(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t)
	key := drafts.NewPostKey()
	if _, err := e.drafts.Save(key, drafts.Draft{Title: "keep"}); err != nil {
		t.Fatal(err)
	}
	e.app.navigate("/posts/create")
	e.app.editor = editorForTest(e, key)

	e.apply(postSavedMsg{key: key, post: &client.Post{}, err: apperr.New(apperr.KindValidation, "create post", "Title is required")})

	if e.app.editor == nil {
		t.Fatal("expected editor reopened")
	}
	if !strings.Contains(e.app.View(), "Title is required") {
		t.Error("expected save error in editor")
	}
	if _, ok := e.drafts.Get(key); !ok {
		t.Error("expected draft kept after failed save")
	}
}

func TestAppViewReturnsContent(t *testing.T) {
	e := newTestEnv(t)
	e.load(t, e.app.Init())

	view := e.app.View()
	if !strings.Contains(view, "blogctl") {
		t.Error("expected header to contain 'blogctl'")
	}
	if !strings.Contains(view, "guest") {
		t.Error("expected header to show guest")
	}
	if !strings.Contains(view, "Search") {
		t.Error("expected footer to contain 'Search' keybinding")
	}

	e.app.navigate("/nowhere")
	if e.app.screen != ScreenNotFound {
		t.Fatalf("expected ScreenNotFound, got %d", e.app.screen)
	}
	if !strings.Contains(e.app.View(), "Nothing at /nowhere") {
		t.Error("expected not-found message")
	}

	e.signIn(t)
	if !strings.Contains(e.app.View(), "alice · admin") {
		t.Error("expected header to show the signed-in admin")
	}
}

func editorForTest(e *testEnv, key string) *editor.Editor {
	d, _ := e.drafts.Get(key)
	return editor.New(key, 0, d, nil, nil, e.drafts)
}
