package session

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cppe-issia/console/internal/events"
	"github.com/cppe-issia/console/internal/logging"
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/cppe-issia/console/sdk/credentials"
	"github.com/cppe-issia/console/sdk/meta"
	"github.com/stretchr/testify/require"
)

const testToken = "littlepiglittlepigletmecomein"

var (
	cachedUser = authx.User{
		ID:    1,
		Name:  "Awa (cached)",
		Roles: []string{authx.RoleDirecteur},
	}
	serverUser = authx.User{
		ID:          1,
		Name:        "Awa Kouassi",
		Roles:       []string{authx.RoleDirecteur},
		Permissions: []string{"gerer-actualites"},
	}
	testCreds = authx.Credentials{
		Email:    "direction@cppe-issia.ci",
		Password: "foobar",
	}
)

type fakeSessionsClient struct {
	loginFn  func(context.Context, authx.Credentials) (authx.LoginResponse, error)
	logoutFn func(context.Context) error
	meFn     func(context.Context) (authx.User, error)
	meCalls  int32
}

func (f *fakeSessionsClient) Login(
	ctx context.Context,
	creds authx.Credentials,
) (authx.LoginResponse, error) {
	return f.loginFn(ctx, creds)
}

func (f *fakeSessionsClient) Logout(ctx context.Context) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func (f *fakeSessionsClient) Me(ctx context.Context) (authx.User, error) {
	atomic.AddInt32(&f.meCalls, 1)
	return f.meFn(ctx)
}

func (f *fakeSessionsClient) meCallCount() int {
	return int(atomic.LoadInt32(&f.meCalls))
}

func newTestController(
	store credentials.Store,
	sessions authx.SessionsClient,
) *Controller {
	return NewController(
		store,
		sessions,
		&ControllerOptions{Logger: logging.Discard()},
	)
}

func storeWith(t *testing.T, token string, user *authx.User) *credentials.MemoryStore {
	store := credentials.NewMemoryStore()
	if user != nil {
		require.NoError(t, store.Save(token, *user))
	} else if token != "" {
		store.SetRaw(token, nil)
	}
	return store
}

func TestNewController(t *testing.T) {
	c := newTestController(credentials.NewMemoryStore(), &fakeSessionsClient{})
	state := c.State()
	require.True(t, state.InitialLoading)
	require.False(t, state.ActionLoading)
	require.Nil(t, state.User)
	select {
	case <-c.Ready():
		require.Fail(t, "controller should not be ready before Start")
	default:
	}
}

func TestRestore(t *testing.T) {
	testCases := []struct {
		name       string
		store      func(t *testing.T) *credentials.MemoryStore
		meFn       func(context.Context) (authx.User, error)
		assertions func(
			t *testing.T,
			c *Controller,
			store *credentials.MemoryStore,
			sessions *fakeSessionsClient,
		)
	}{
		{
			name: "no token",
			store: func(t *testing.T) *credentials.MemoryStore {
				return credentials.NewMemoryStore()
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				_ *credentials.MemoryStore,
				sessions *fakeSessionsClient,
			) {
				state := c.State()
				require.Nil(t, state.User)
				require.False(t, state.InitialLoading)
				require.Equal(t, 0, sessions.meCallCount())
			},
		},
		{
			name: "user without token",
			store: func(t *testing.T) *credentials.MemoryStore {
				store := credentials.NewMemoryStore()
				store.SetRaw("", []byte(`{"name":"Awa","roles":["directeur"]}`))
				return store
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				_ *credentials.MemoryStore,
				sessions *fakeSessionsClient,
			) {
				require.Nil(t, c.State().User)
				require.Equal(t, 0, sessions.meCallCount())
			},
		},
		{
			name: "valid token",
			store: func(t *testing.T) *credentials.MemoryStore {
				return storeWith(t, testToken, &cachedUser)
			},
			meFn: func(context.Context) (authx.User, error) {
				return serverUser, nil
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				store *credentials.MemoryStore,
				sessions *fakeSessionsClient,
			) {
				state := c.State()
				require.False(t, state.InitialLoading)
				require.Equal(t, &serverUser, state.User)
				token, user := store.Load()
				require.Equal(t, testToken, token)
				require.Equal(t, &serverUser, user)
				require.Equal(t, 1, sessions.meCallCount())
			},
		},
		{
			name: "valid token without cached user",
			store: func(t *testing.T) *credentials.MemoryStore {
				return storeWith(t, testToken, nil)
			},
			meFn: func(context.Context) (authx.User, error) {
				return serverUser, nil
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				store *credentials.MemoryStore,
				_ *fakeSessionsClient,
			) {
				require.Equal(t, &serverUser, c.State().User)
				_, user := store.Load()
				require.Equal(t, &serverUser, user)
			},
		},
		{
			name: "malformed cached user",
			store: func(t *testing.T) *credentials.MemoryStore {
				store := credentials.NewMemoryStore()
				store.SetRaw(testToken, []byte("{not json"))
				return store
			},
			meFn: func(context.Context) (authx.User, error) {
				return serverUser, nil
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				_ *credentials.MemoryStore,
				_ *fakeSessionsClient,
			) {
				require.Equal(t, &serverUser, c.State().User)
			},
		},
		{
			name: "expired token",
			store: func(t *testing.T) *credentials.MemoryStore {
				return storeWith(t, testToken, &cachedUser)
			},
			meFn: func(context.Context) (authx.User, error) {
				return authx.User{}, &meta.ErrAuthentication{
					APIResponse: meta.APIResponse{Code: http.StatusUnauthorized},
				}
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				store *credentials.MemoryStore,
				_ *fakeSessionsClient,
			) {
				state := c.State()
				require.False(t, state.InitialLoading)
				require.Nil(t, state.User)
				token, user := store.Load()
				require.Empty(t, token)
				require.Nil(t, user)
			},
		},
		{
			name: "transient server error",
			store: func(t *testing.T) *credentials.MemoryStore {
				return storeWith(t, testToken, &cachedUser)
			},
			meFn: func(context.Context) (authx.User, error) {
				return authx.User{}, &meta.ErrInternalServer{
					APIResponse: meta.APIResponse{Code: http.StatusInternalServerError},
				}
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				store *credentials.MemoryStore,
				_ *fakeSessionsClient,
			) {
				state := c.State()
				require.False(t, state.InitialLoading)
				require.Equal(t, &cachedUser, state.User)
				token, user := store.Load()
				require.Equal(t, testToken, token)
				require.Equal(t, &cachedUser, user)
			},
		},
		{
			name: "network error",
			store: func(t *testing.T) *credentials.MemoryStore {
				return storeWith(t, testToken, &cachedUser)
			},
			meFn: func(context.Context) (authx.User, error) {
				return authx.User{}, errors.New("connection refused")
			},
			assertions: func(
				t *testing.T,
				c *Controller,
				_ *credentials.MemoryStore,
				_ *fakeSessionsClient,
			) {
				require.Equal(t, &cachedUser, c.State().User)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := testCase.store(t)
			sessions := &fakeSessionsClient{meFn: testCase.meFn}
			c := newTestController(store, sessions)
			require.NoError(t, c.Restore(context.Background()))
			testCase.assertions(t, c, store, sessions)
		})
	}
}

func TestStartOptimisticState(t *testing.T) {
	release := make(chan struct{})
	sessions := &fakeSessionsClient{
		meFn: func(context.Context) (authx.User, error) {
			<-release
			return serverUser, nil
		},
	}
	c := newTestController(storeWith(t, testToken, &cachedUser), sessions)
	c.Start(context.Background())

	// The cached user is current while verification is pending
	state := c.State()
	require.True(t, state.InitialLoading)
	require.Equal(t, &cachedUser, state.User)

	close(release)
	select {
	case <-c.Ready():
	case <-time.After(5 * time.Second):
		require.Fail(t, "restoration did not settle")
	}
	state = c.State()
	require.False(t, state.InitialLoading)
	require.Equal(t, &serverUser, state.User)
}

// slowStore is a MemoryStore whose Save blocks until released.
type slowStore struct {
	*credentials.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) Save(token string, user authx.User) error {
	close(s.entered)
	<-s.release
	return s.MemoryStore.Save(token, user)
}

func TestStateDuringSlowStoreWrite(t *testing.T) {
	store := &slowStore{
		MemoryStore: storeWith(t, testToken, &cachedUser),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	sessions := &fakeSessionsClient{
		meFn: func(context.Context) (authx.User, error) {
			return serverUser, nil
		},
	}
	c := newTestController(store, sessions)
	c.Start(context.Background())

	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		require.Fail(t, "restoration never wrote to the store")
	}
	stateCh := make(chan State, 1)
	go func() {
		stateCh <- c.State()
	}()
	select {
	case state := <-stateCh:
		require.True(t, state.InitialLoading)
		require.Equal(t, &cachedUser, state.User)
	case <-time.After(5 * time.Second):
		require.Fail(t, "State blocked on a store write")
	}

	close(store.release)
	select {
	case <-c.Ready():
	case <-time.After(5 * time.Second):
		require.Fail(t, "restoration did not settle")
	}
	require.Equal(t, &serverUser, c.State().User)
	token, user := store.Load()
	require.Equal(t, testToken, token)
	require.Equal(t, &serverUser, user)
}

func TestStartRunsOnce(t *testing.T) {
	sessions := &fakeSessionsClient{
		meFn: func(context.Context) (authx.User, error) {
			return serverUser, nil
		},
	}
	c := newTestController(storeWith(t, testToken, &cachedUser), sessions)
	require.NoError(t, c.Restore(context.Background()))
	c.Start(context.Background())
	require.NoError(t, c.Restore(context.Background()))
	require.Equal(t, 1, sessions.meCallCount())
}

func TestRestoreContextDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	sessions := &fakeSessionsClient{
		meFn: func(context.Context) (authx.User, error) {
			<-release
			return serverUser, nil
		},
	}
	c := newTestController(storeWith(t, testToken, &cachedUser), sessions)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, c.Restore(ctx))
}

func TestLogoutDuringRestoration(t *testing.T) {
	release := make(chan struct{})
	sessions := &fakeSessionsClient{
		meFn: func(context.Context) (authx.User, error) {
			<-release
			return serverUser, nil
		},
	}
	store := storeWith(t, testToken, &cachedUser)
	c := newTestController(store, sessions)
	c.Start(context.Background())
	c.Logout(context.Background())
	close(release)
	<-c.Ready()
	require.Nil(t, c.State().User)
	token, user := store.Load()
	require.Empty(t, token)
	require.Nil(t, user)
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name       string
		loginFn    func(context.Context, authx.Credentials) (authx.LoginResponse, error)
		assertions func(
			t *testing.T,
			result LoginResult,
			c *Controller,
			store *credentials.MemoryStore,
		)
	}{
		{
			name: "success",
			loginFn: func(
				_ context.Context,
				creds authx.Credentials,
			) (authx.LoginResponse, error) {
				require.Equal(t, testCreds, creds)
				user := serverUser
				return authx.LoginResponse{
					User:    &user,
					Token:   testToken,
					Message: "Connexion réussie.",
				}, nil
			},
			assertions: func(
				t *testing.T,
				result LoginResult,
				c *Controller,
				store *credentials.MemoryStore,
			) {
				require.True(t, result.Success)
				require.Equal(t, "Connexion réussie.", result.Message)
				require.Equal(t, &serverUser, c.State().User)
				token, user := store.Load()
				require.Equal(t, testToken, token)
				require.Equal(t, &serverUser, user)
			},
		},
		{
			name: "missing token",
			loginFn: func(
				context.Context,
				authx.Credentials,
			) (authx.LoginResponse, error) {
				user := serverUser
				return authx.LoginResponse{User: &user}, nil
			},
			assertions: func(
				t *testing.T,
				result LoginResult,
				c *Controller,
				store *credentials.MemoryStore,
			) {
				require.False(t, result.Success)
				require.Equal(t, MessageMissingToken, result.Message)
				require.Nil(t, c.State().User)
				token, user := store.Load()
				require.Empty(t, token)
				require.Nil(t, user)
			},
		},
		{
			name: "missing user",
			loginFn: func(
				context.Context,
				authx.Credentials,
			) (authx.LoginResponse, error) {
				return authx.LoginResponse{Token: testToken}, nil
			},
			assertions: func(
				t *testing.T,
				result LoginResult,
				_ *Controller,
				store *credentials.MemoryStore,
			) {
				require.False(t, result.Success)
				require.Equal(t, MessageMissingUser, result.Message)
				_, ok := store.Token()
				require.False(t, ok)
			},
		},
		{
			name: "rejected with message",
			loginFn: func(
				context.Context,
				authx.Credentials,
			) (authx.LoginResponse, error) {
				return authx.LoginResponse{}, &meta.ErrAuthentication{
					APIResponse: meta.APIResponse{
						Code:    http.StatusUnauthorized,
						Message: "Email ou mot de passe invalide.",
					},
				}
			},
			assertions: func(
				t *testing.T,
				result LoginResult,
				c *Controller,
				_ *credentials.MemoryStore,
			) {
				require.False(t, result.Success)
				require.Equal(t, "Email ou mot de passe invalide.", result.Message)
				require.Nil(t, c.State().User)
			},
		},
		{
			name: "transport failure",
			loginFn: func(
				context.Context,
				authx.Credentials,
			) (authx.LoginResponse, error) {
				return authx.LoginResponse{}, errors.New("connection refused")
			},
			assertions: func(
				t *testing.T,
				result LoginResult,
				_ *Controller,
				_ *credentials.MemoryStore,
			) {
				require.False(t, result.Success)
				require.Equal(t, MessageFallback, result.Message)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := credentials.NewMemoryStore()
			outcomes := []bool{}
			c := NewController(
				store,
				&fakeSessionsClient{loginFn: testCase.loginFn},
				&ControllerOptions{
					Logger: logging.Discard(),
					OnLogin: func(success bool) {
						outcomes = append(outcomes, success)
					},
				},
			)
			result := c.Login(context.Background(), testCreds)
			require.False(t, c.State().ActionLoading)
			require.Equal(t, []bool{result.Success}, outcomes)
			testCase.assertions(t, result, c, store)
		})
	}
}

func TestLoginFailureKeepsExistingUser(t *testing.T) {
	store := credentials.NewMemoryStore()
	sessions := &fakeSessionsClient{}
	c := newTestController(store, sessions)

	sessions.loginFn = func(
		context.Context,
		authx.Credentials,
	) (authx.LoginResponse, error) {
		user := serverUser
		return authx.LoginResponse{User: &user, Token: testToken}, nil
	}
	require.True(t, c.Login(context.Background(), testCreds).Success)

	sessions.loginFn = func(
		context.Context,
		authx.Credentials,
	) (authx.LoginResponse, error) {
		return authx.LoginResponse{}, nil
	}
	require.False(t, c.Login(context.Background(), testCreds).Success)
	require.Equal(t, &serverUser, c.State().User)
	token, _ := store.Load()
	require.Equal(t, testToken, token)
}

func TestLoginActionLoading(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c := newTestController(
		credentials.NewMemoryStore(),
		&fakeSessionsClient{
			loginFn: func(
				context.Context,
				authx.Credentials,
			) (authx.LoginResponse, error) {
				close(entered)
				<-release
				return authx.LoginResponse{}, errors.New("boom")
			},
		},
	)
	done := make(chan LoginResult)
	go func() {
		done <- c.Login(context.Background(), testCreds)
	}()
	<-entered
	require.True(t, c.State().ActionLoading)
	close(release)
	<-done
	require.False(t, c.State().ActionLoading)
}

func TestLogout(t *testing.T) {
	testCases := []struct {
		name     string
		logoutFn func(context.Context) error
	}{
		{
			name: "logout succeeds",
		},
		{
			name: "logout fails",
			logoutFn: func(context.Context) error {
				return errors.New("connection refused")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := storeWith(t, testToken, &serverUser)
			c := newTestController(
				store,
				&fakeSessionsClient{
					logoutFn: testCase.logoutFn,
					meFn: func(context.Context) (authx.User, error) {
						return serverUser, nil
					},
				},
			)
			require.NoError(t, c.Restore(context.Background()))
			require.NotNil(t, c.State().User)
			c.Logout(context.Background())
			require.Nil(t, c.State().User)
			token, user := store.Load()
			require.Empty(t, token)
			require.Nil(t, user)
		})
	}
}

func TestHandleEvent(t *testing.T) {
	c := newTestController(
		storeWith(t, testToken, &serverUser),
		&fakeSessionsClient{
			meFn: func(context.Context) (authx.User, error) {
				return serverUser, nil
			},
		},
	)
	require.NoError(t, c.Restore(context.Background()))

	broker := events.NewBroker()
	broker.Subscribe(c.HandleEvent)

	broker.Send(events.Event{Type: "something.else"})
	require.NotNil(t, c.State().User)

	broker.Send(events.Event{Type: events.SessionInvalidated, Reason: "401"})
	require.Nil(t, c.State().User)
}

func TestPredicates(t *testing.T) {
	testCases := []struct {
		name          string
		user          *authx.User
		superAdmin    bool
		directeur     bool
		hasPermission bool
	}{
		{
			name: "anonymous",
		},
		{
			name:          "super-admin",
			user:          &authx.User{Name: "Admin", Roles: []string{authx.RoleSuperAdmin}},
			superAdmin:    true,
			directeur:     true,
			hasPermission: false,
		},
		{
			name: "directeur",
			user: &authx.User{
				Name:        "Awa",
				Roles:       []string{authx.RoleDirecteur},
				Permissions: []string{"gerer-actualites"},
			},
			directeur:     true,
			hasPermission: true,
		},
		{
			name: "other role",
			user: &authx.User{Name: "Secrétaire", Roles: []string{"secretaire"}},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := credentials.NewMemoryStore()
			if testCase.user != nil {
				require.NoError(t, store.Save(testToken, *testCase.user))
			}
			before, _ := store.Load()
			c := newTestController(
				store,
				&fakeSessionsClient{
					meFn: func(context.Context) (authx.User, error) {
						return *testCase.user, nil
					},
				},
			)
			require.NoError(t, c.Restore(context.Background()))
			for i := 0; i < 2; i++ {
				require.Equal(t, testCase.superAdmin, c.IsSuperAdmin())
				require.Equal(t, testCase.directeur, c.IsDirecteur())
				require.Equal(
					t,
					testCase.hasPermission,
					c.HasPermission("gerer-actualites"),
				)
				require.False(t, c.HasRole())
			}
			after, _ := store.Load()
			require.Equal(t, before, after)
		})
	}
}
