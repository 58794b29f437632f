// ABOUTME: Guarded navigation state shared by commands, screens and the API client
// ABOUTME: Every location change passes through the guard before it takes effect

package router

import (
	"log/slog"
	"sync"
)

// maxRedirects bounds guard redirect chains
const maxRedirects = 4

// Listener is notified after every completed navigation
type Listener func(Match)

// Router tracks the current location. Safe for concurrent use.
type Router struct {
	table   *Table
	session Session
	logger  *slog.Logger

	mu        sync.RWMutex
	current   Match
	history   []Match
	listeners map[int]Listener
	nextID    int
}

// New creates a router positioned at the home route
func New(session Session, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	table := NewTable(Routes)
	return &Router{
		table:     table,
		session:   session,
		logger:    logger,
		current:   table.Resolve(PathHome),
		listeners: make(map[int]Listener),
	}
}

// Check resolves location and runs the guard without navigating
func (r *Router) Check(location string) (Match, Decision) {
	m := r.table.Resolve(location)
	return m, Guard(m, r.session)
}

// Navigate moves to location, following guard redirects, and returns where
// it ended up
func (r *Router) Navigate(location string) Match {
	m, d := r.Check(location)
	for hops := 0; !d.Allowed() && hops < maxRedirects; hops++ {
		r.logger.Info("Navigation redirected", "from", m.Path, "to", d.Redirect)
		m, d = r.Check(d.Redirect)
	}

	r.mu.Lock()
	r.history = append(r.history, r.current)
	r.current = m
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	r.logger.Debug("Navigated", "route", m.Route.Name, "path", m.String())
	for _, l := range listeners {
		l(m)
	}
	return m
}

// Back returns to the previous location, re-running the guard
func (r *Router) Back() Match {
	r.mu.Lock()
	if len(r.history) == 0 {
		cur := r.current
		r.mu.Unlock()
		return cur
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.mu.Unlock()

	m := r.Navigate(prev.String())
	// Navigate pushed the location we just left; drop it so Back walks backwards
	r.mu.Lock()
	if n := len(r.history); n > 0 {
		r.history = r.history[:n-1]
	}
	r.mu.Unlock()
	return m
}

// Current returns the current path
func (r *Router) Current() string {
	return r.CurrentMatch().Path
}

// CurrentMatch returns the current location
func (r *Router) CurrentMatch() Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Redirect navigates to path. It lets the router stand in wherever a
// redirect target is needed.
func (r *Router) Redirect(path string) {
	r.Navigate(path)
}

// Subscribe registers l and returns a function that removes it
func (r *Router) Subscribe(l Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}
