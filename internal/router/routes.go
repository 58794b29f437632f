// ABOUTME: Route table for the client's screens
// ABOUTME: Resolves paths to named routes with access requirements using chi's matcher

package router

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route names
const (
	RouteHome          = "home"
	RouteAbout         = "about"
	RouteLogin         = "login"
	RouteOAuthCallback = "oauth-callback"
	RoutePostDetail    = "post-detail"
	RoutePostCreate    = "post-create"
	RoutePostEdit      = "post-edit"
	RouteAdmin         = "admin"
	RouteCategory      = "category"
	RouteTag           = "tag"
	RouteSearch        = "search"
	RouteNotFound      = "not-found"
)

// Well-known paths
const (
	PathHome       = "/"
	PathAbout      = "/about"
	PathLogin      = "/login"
	PathAdmin      = "/admin"
	PathPostCreate = "/posts/create"
)

// Route describes one screen and who may see it
type Route struct {
	Pattern       string
	Name          string
	RequiresAuth  bool
	RequiresAdmin bool
}

// Routes is the application's route table in match order
var Routes = []Route{
	{Pattern: "/", Name: RouteHome},
	{Pattern: "/about", Name: RouteAbout},
	{Pattern: "/oauth/callback", Name: RouteOAuthCallback},
	{Pattern: "/login", Name: RouteLogin},
	{Pattern: "/post/{id}", Name: RoutePostDetail},
	{Pattern: PathPostCreate, Name: RoutePostCreate, RequiresAuth: true},
	{Pattern: "/posts/edit/{id}", Name: RoutePostEdit, RequiresAuth: true},
	{Pattern: PathAdmin, Name: RouteAdmin, RequiresAuth: true, RequiresAdmin: true},
	{Pattern: "/category/{id}", Name: RouteCategory},
	{Pattern: "/tag/{id}", Name: RouteTag},
	{Pattern: "/search", Name: RouteSearch},
}

var notFound = Route{Pattern: "/*", Name: RouteNotFound}

// Match is a resolved location
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
	Query  url.Values
}

// Param returns a path parameter, or ""
func (m Match) Param(key string) string {
	return m.Params[key]
}

// String returns the path with its query
func (m Match) String() string {
	if len(m.Query) == 0 {
		return m.Path
	}
	return m.Path + "?" + m.Query.Encode()
}

// Table resolves paths against a set of routes
type Table struct {
	mux    *chi.Mux
	routes map[string]Route
}

// NewTable builds a table from routes
func NewTable(routes []Route) *Table {
	t := &Table{
		mux:    chi.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		t.mux.Get(r.Pattern, noop)
		t.routes[r.Pattern] = r
	}
	return t
}

// Resolve matches location (a path with optional query) to a route.
// Unknown paths resolve to the not-found route.
func (t *Table) Resolve(location string) Match {
	path, rawQuery, _ := strings.Cut(location, "?")
	if path == "" {
		path = PathHome
	}
	query, _ := url.ParseQuery(rawQuery)

	m := Match{Route: notFound, Path: path, Params: map[string]string{}, Query: query}

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return m
	}
	route, ok := t.routes[rctx.RoutePattern()]
	if !ok {
		return m
	}
	m.Route = route
	for i, key := range rctx.URLParams.Keys {
		m.Params[key] = rctx.URLParams.Values[i]
	}
	return m
}
