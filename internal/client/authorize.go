// ABOUTME: Request and response authorization hooks for the API client
// ABOUTME: Injects the bearer token and runs the one-shot redirect on 401

package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/nilmcc/blogctl/internal/storage"
)

// LoginPath is where an unauthorized session is sent
const LoginPath = "/login"

// delayFunc schedules the post-401 redirect; replaced in tests
var delayFunc = func(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// authorize sets or strips the bearer token. The token is read from the
// durable store on every request so other processes' logins and logouts apply.
func (c *Client) authorize(req *http.Request) {
	if c.isExcluded(req.URL.String()) {
		return
	}

	token, ok, err := c.store.Get(storage.KeyToken)
	if err != nil {
		c.logger.Warn("Cannot read stored token", "error", err)
	}
	if ok && usableToken(token) {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	req.Header.Del("Authorization")
}

// usableToken rejects blanks and stringified nulls left by earlier clients
func usableToken(token string) bool {
	t := strings.TrimSpace(token)
	return t != "" && t != "null" && t != "undefined"
}

func (c *Client) isExcluded(target string) bool {
	for _, host := range c.excludedHosts {
		if host != "" && strings.Contains(target, host) {
			return true
		}
	}
	return false
}

// isPublicEndpoint reports whether req is an anonymous read; writes to the
// same resources are never public
func (c *Client) isPublicEndpoint(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	target := req.URL.String()
	for _, endpoint := range c.publicEndpoints {
		if strings.Contains(target, endpoint) {
			return true
		}
	}
	return false
}

func (c *Client) isExemptRoute(current string) bool {
	if i := strings.IndexAny(current, "?#"); i >= 0 {
		current = current[:i]
	}
	for _, route := range c.exemptRoutes {
		if current == route {
			return true
		}
	}
	return false
}

// handleUnauthorized clears credentials and schedules a single redirect to
// login. Concurrent 401s share one redirect through the transient flag.
func (c *Client) handleUnauthorized(req *http.Request) {
	target := req.URL.String()
	if c.isExcluded(target) {
		c.logger.Debug("401 from external provider, not redirecting", "url", target)
		return
	}
	if c.isPublicEndpoint(req) {
		c.logger.Debug("401 on public endpoint, not redirecting", "url", target)
		return
	}

	nav := c.navigator()
	if nav != nil && c.isExemptRoute(nav.Current()) {
		c.logger.Debug("401 on exempt route, not redirecting", "route", nav.Current())
		return
	}

	if !c.flags.SetIfAbsent(storage.KeyAuthRedirecting, "true") {
		c.logger.Debug("Already redirecting, skipping additional redirect", "url", target)
		return
	}

	c.logger.Warn("Unauthorized response, clearing credentials", "url", target)
	if err := c.store.Remove(storage.KeyToken, storage.KeyUser); err != nil {
		c.logger.Warn("Failed to clear stored credentials", "error", err)
	}

	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}

	delayFunc(c.redirectDelay, func() {
		c.flags.Remove(storage.KeyAuthRedirecting)
		if nav := c.navigator(); nav != nil {
			nav.Redirect(LoginPath)
		}
	})
}
