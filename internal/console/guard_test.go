package console

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cppe-issia/console/internal/logging"
	"github.com/cppe-issia/console/internal/session"
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/stretchr/testify/require"
)

type fakeSessionState struct {
	state session.State
}

func (f fakeSessionState) State() session.State {
	return f.state
}

var (
	testDirecteur = &authx.User{
		Name:  "Awa",
		Roles: []string{authx.RoleDirecteur},
	}
	testSuperAdmin = &authx.User{
		Name:  "Admin",
		Roles: []string{authx.RoleSuperAdmin},
	}
)

func TestGuardProtect(t *testing.T) {
	testCases := []struct {
		name       string
		state      session.State
		roles      []string
		target     string
		assertions func(t *testing.T, rr *httptest.ResponseRecorder, served bool)
	}{
		{
			name:   "booting without user",
			state:  session.State{InitialLoading: true},
			target: "/admin/messages",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.False(t, served)
				require.Equal(t, http.StatusServiceUnavailable, rr.Code)
				require.Equal(t, "1", rr.Header().Get("Retry-After"))
				require.Contains(t, rr.Body.String(), "Chargement")
			},
		},
		{
			name:   "booting with optimistic user",
			state:  session.State{InitialLoading: true, User: testSuperAdmin},
			roles:  []string{authx.RoleSuperAdmin},
			target: "/admin/utilisateurs",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.False(t, served)
				require.Equal(t, http.StatusServiceUnavailable, rr.Code)
			},
		},
		{
			name:   "anonymous",
			state:  session.State{},
			target: "/admin/messages?page=2",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.False(t, served)
				require.Equal(t, http.StatusFound, rr.Code)
				require.Equal(
					t,
					"/admin/login?from=%2Fadmin%2Fmessages%3Fpage%3D2",
					rr.Header().Get("Location"),
				)
			},
		},
		{
			name:   "anonymous on landing page",
			state:  session.State{},
			target: "/admin/dashboard",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.False(t, served)
				require.Equal(t, LoginRoute, rr.Header().Get("Location"))
			},
		},
		{
			name:   "insufficient role",
			state:  session.State{User: testDirecteur},
			roles:  []string{authx.RoleSuperAdmin},
			target: "/admin/utilisateurs",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.False(t, served)
				require.Equal(t, http.StatusFound, rr.Code)
				require.Equal(t, LandingRoute, rr.Header().Get("Location"))
			},
		},
		{
			name:   "matching role",
			state:  session.State{User: testSuperAdmin},
			roles:  []string{authx.RoleSuperAdmin, authx.RoleDirecteur},
			target: "/admin/utilisateurs",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.True(t, served)
				require.Equal(t, http.StatusOK, rr.Code)
			},
		},
		{
			name:   "no role filter",
			state:  session.State{User: testDirecteur},
			target: "/admin/dashboard",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.True(t, served)
			},
		},
		{
			name:   "action in progress",
			state:  session.State{User: testDirecteur, ActionLoading: true},
			target: "/admin/dashboard",
			assertions: func(t *testing.T, rr *httptest.ResponseRecorder, served bool) {
				require.True(t, served)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			guard := NewGuard(fakeSessionState{state: testCase.state}, logging.Discard())
			served := false
			handler := guard.Protect(testCase.roles...)(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					served = true
					w.WriteHeader(http.StatusOK)
				}),
			)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(
				rr,
				httptest.NewRequest(http.MethodGet, testCase.target, nil),
			)
			testCase.assertions(t, rr, served)
		})
	}
}

func TestSafeReturnPath(t *testing.T) {
	testCases := map[string]string{
		"":                         LandingRoute,
		"/admin/messages":          "/admin/messages",
		"/admin/messages?page=2":   "/admin/messages?page=2",
		"https://evil.example/":    LandingRoute,
		"//evil.example/":          LandingRoute,
		"/\\evil.example":          LandingRoute,
		"admin/messages":           LandingRoute,
		"/admin/login":             LandingRoute,
		"/admin/login?from=/admin": LandingRoute,
		"/\t/evil.example":         LandingRoute,
		"/\n/evil.example":         LandingRoute,
		"/\r\n/evil.example":       LandingRoute,
		"/admin/\x7fmessages":      LandingRoute,
		"/admin/messages\x00":      LandingRoute,
	}
	for path, expected := range testCases {
		require.Equal(t, expected, safeReturnPath(path), path)
	}
}

func TestLoginURLRejectsControlCharacters(t *testing.T) {
	require.Equal(t, LoginRoute, loginURL("/\t/evil.example"))
}
