package restmachinery

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cppe-issia/console/sdk/meta"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenStore is the subset of a credential store the interceptors rely upon.
type TokenStore interface {
	// Token returns the stored bearer token and true, or "" and false if no
	// token is stored.
	Token() (string, bool)
	// Clear removes all stored credentials.
	Clear() error
}

// bearerTokenTransport decorates every outgoing request with the stored
// bearer token, if there is one. It never rejects a request.
type bearerTokenTransport struct {
	tokens TokenStore
	next   http.RoundTripper
	logger logrus.FieldLogger
}

func (b *bearerTokenTransport) RoundTrip(
	r *http.Request,
) (*http.Response, error) {
	token, ok := b.tokens.Token()
	b.logger.WithFields(logrus.Fields{
		"method":       r.Method,
		"path":         r.URL.Path,
		"tokenPresent": ok,
	}).Debug("sending API request")
	if !ok {
		return b.next.RoundTrip(r)
	}
	// A RoundTripper must not modify the request it was given
	r = r.Clone(r.Context())
	(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}).SetAuthHeader(r)
	return b.next.RoundTrip(r)
}

// unauthorizedTransport watches every response for a 401. Unless the 401 is
// the answer to a login attempt, or arrived while the console was already
// showing the login screen, it clears the stored credentials, aborts every
// other in-flight request, and reports the session as invalidated. The
// response itself is always passed through untouched.
type unauthorizedTransport struct {
	tokens        TokenStore
	pending       *pendingRequests
	loginPath     string
	loginRoute    string
	onInvalidated func(reason string)
	next          http.RoundTripper
	logger        logrus.FieldLogger
}

func (u *unauthorizedTransport) RoundTrip(
	r *http.Request,
) (*http.Response, error) {
	resp, err := u.next.RoundTrip(r)
	if err != nil {
		return resp, err
	}
	logger := u.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": resp.StatusCode,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		logger.Debug("received API response")
		return resp, nil
	}
	isLoginRequest := u.isLoginRequest(r)
	onLoginScreen := u.onLoginScreen(r)
	logger = logger.WithFields(logrus.Fields{
		"isLoginRequest": isLoginRequest,
		"onLoginScreen":  onLoginScreen,
	})
	if isLoginRequest || onLoginScreen {
		logger.Debug("API rejected credentials; leaving session untouched")
		return resp, nil
	}
	logger.Warn("API rejected session token; invalidating session")
	if err := u.tokens.Clear(); err != nil {
		logger.WithError(err).Error("error clearing stored credentials")
	}
	if aborted :=
		u.pending.abortAllExcept(trackedRequestID(r.Context())); aborted > 0 {
		logger.WithField("aborted", aborted).Info("aborted in-flight API requests")
	}
	if u.onInvalidated != nil {
		u.onInvalidated(fmt.Sprintf("%s %s returned 401", r.Method, r.URL.Path))
	}
	return resp, nil
}

func (u *unauthorizedTransport) isLoginRequest(r *http.Request) bool {
	return strings.HasSuffix(
		strings.TrimRight(r.URL.Path, "/"),
		"/"+strings.Trim(u.loginPath, "/"),
	)
}

func (u *unauthorizedTransport) onLoginScreen(r *http.Request) bool {
	location := meta.LocationFromContext(r.Context())
	return location != "" && strings.HasPrefix(location, u.loginRoute)
}
