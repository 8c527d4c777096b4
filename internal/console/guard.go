package console

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/cppe-issia/console/internal/session"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	// LoginRoute is the console route of the login screen.
	LoginRoute = "/admin/login"
	// LandingRoute is where authenticated users land by default.
	LandingRoute = "/admin/dashboard"
)

// SessionState is the interface for components that expose the state of the
// operator's session.
type SessionState interface {
	State() session.State
}

// Guard gates protected console routes on the state of the session.
type Guard struct {
	session  SessionState
	renderer *renderer
}

// NewGuard returns a Guard that consults s.
func NewGuard(s SessionState, logger logrus.FieldLogger) *Guard {
	return &Guard{
		session:  s,
		renderer: &renderer{logger: logger},
	}
}

// Protect returns middleware that lets a request through only once startup
// restoration has settled and only for an authenticated user holding one of
// roles. No roles means any authenticated user.
//
// While the session is booting, the middleware answers with a loading page
// and never consults the user, so that nobody is redirected before
// restoration has settled.
func (g *Guard) Protect(roles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := g.session.State()
			if state.InitialLoading {
				w.Header().Set("Retry-After", "1")
				g.renderer.render(w, http.StatusServiceUnavailable, "loading", nil)
				return
			}
			if state.User == nil {
				http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
				return
			}
			if len(roles) > 0 && !state.User.HasAnyRole(roles...) {
				http.Redirect(w, r, LandingRoute, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loginURL returns the login route remembering from as the location to
// return to after logging in.
func loginURL(from string) string {
	from = safeReturnPath(from)
	if from == LandingRoute {
		return LoginRoute
	}
	return LoginRoute + "?" + url.Values{"from": []string{from}}.Encode()
}

// safeReturnPath returns path if it is a local, non-login path and
// LandingRoute otherwise. It keeps post-login redirects on this console.
// Control characters are rejected outright because browsers strip some of
// them, which could turn "/\t/host" into "//host".
func safeReturnPath(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] < 0x20 || path[i] == 0x7f {
			return LandingRoute
		}
	}
	if path == "" ||
		!strings.HasPrefix(path, "/") ||
		strings.HasPrefix(path, "//") ||
		strings.Contains(path, "\\") ||
		strings.HasPrefix(path, LoginRoute) {
		return LandingRoute
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return LandingRoute
	}
	return path
}
