// ABOUTME: Route guard deciding whether a location may be shown
// ABOUTME: Redirects anonymous users to login and non-admins to home

package router

// Session is the auth state the guard consults
type Session interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// Decision is the guard's verdict. Redirect is empty when access is allowed.
type Decision struct {
	Redirect string
}

// Allowed reports whether navigation may proceed
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Guard decides whether s may visit m. The about page is always open and
// authentication is checked before the admin role.
func Guard(m Match, s Session) Decision {
	if m.Path == PathAbout {
		return Decision{}
	}
	if m.Route.RequiresAuth && !s.IsAuthenticated() {
		return Decision{Redirect: PathLogin}
	}
	if m.Route.RequiresAdmin && !s.IsAdmin() {
		return Decision{Redirect: PathHome}
	}
	return Decision{}
}
