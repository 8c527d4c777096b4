// Package session holds the state of the operator's back-office session and
// the operations that move it between anonymous and authenticated.
package session

import (
	"context"
	"sync"

	"github.com/cppe-issia/console/internal/events"
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/cppe-issia/console/sdk/credentials"
	"github.com/cppe-issia/console/sdk/meta"
	"github.com/sirupsen/logrus"
)

const (
	// MessageMissingToken is returned when a login succeeds without issuing a
	// token.
	MessageMissingToken = "Erreur serveur : token manquant."
	// MessageMissingUser is returned when a login succeeds without returning
	// the user record.
	MessageMissingUser = "Erreur serveur : utilisateur manquant."
	// MessageFallback is returned for a failed login when the API did not
	// provide a message of its own.
	MessageFallback = "Identifiants incorrects."
	// MessageSaveFailed is returned when the credentials of an otherwise
	// successful login could not be persisted.
	MessageSaveFailed = "Erreur : impossible d'enregistrer la session."
)

// State is a snapshot of the session.
type State struct {
	// User is nil while the session is anonymous.
	User *authx.User `json:"user"`
	// InitialLoading is true until startup restoration has settled.
	InitialLoading bool `json:"initialLoading"`
	// ActionLoading is true while a login is in progress.
	ActionLoading bool `json:"actionLoading"`
}

// LoginResult is the outcome of a login attempt. Message is always set on
// failure and may be set on success.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ControllerOptions encapsulates optional Controller configuration.
type ControllerOptions struct {
	Logger logrus.FieldLogger
	// OnLogin, if non-nil, is called with the outcome of every login attempt.
	OnLogin func(success bool)
}

// Controller owns the session state. It is safe for concurrent use. No lock
// is held while the API is being called, and State never waits on the
// credentials store.
type Controller struct {
	store    credentials.Store
	sessions authx.SessionsClient
	logger   logrus.FieldLogger
	onLogin  func(bool)

	// storeMu orders writes to the store with changes of generation. It is
	// taken before mu and never while calling the API.
	storeMu sync.Mutex

	mu             sync.RWMutex
	user           *authx.User
	initialLoading bool
	actionLoading  bool
	// generation increases whenever login, logout or invalidation replaces
	// the user, so that a slower restoration cannot overwrite the newer
	// state.
	generation uint64

	startOnce sync.Once
	ready     chan struct{}
}

// NewController returns a Controller in its booting state.
func NewController(
	store credentials.Store,
	sessions authx.SessionsClient,
	opts *ControllerOptions,
) *Controller {
	if opts == nil {
		opts = &ControllerOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Controller{
		store:          store,
		sessions:       sessions,
		logger:         logger.WithField("component", "session"),
		onLogin:        opts.OnLogin,
		initialLoading: true,
		ready:          make(chan struct{}),
	}
}

// Start begins startup restoration. Only the first call has any effect. If a
// token is stored, the cached User, if any, becomes current before Start
// returns and is then reconciled with the API in the background. Without a
// token the Controller settles before Start returns.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		token, cachedUser := c.store.Load()
		if token == "" {
			c.logger.Debug("no stored token; session is anonymous")
			c.settle()
			return
		}
		c.mu.Lock()
		c.user = cachedUser
		generation := c.generation
		c.mu.Unlock()
		c.logger.WithField("cachedUser", cachedUser != nil).Debug(
			"restoring session from stored credentials",
		)
		go c.reconcile(ctx, token, generation)
	})
}

// Restore is Start followed by a wait for restoration to settle. It returns
// ctx's error if ctx is done first.
func (c *Controller) Restore(ctx context.Context) error {
	c.Start(ctx)
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready returns a channel that is closed once startup restoration has
// settled.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

func (c *Controller) reconcile(
	ctx context.Context,
	token string,
	generation uint64,
) {
	defer c.settle()
	user, err := c.sessions.Me(ctx)

	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if !c.isGeneration(generation) {
		c.logger.Debug("session changed during restoration; discarding result")
		return
	}
	switch {
	case err == nil:
		if saveErr := c.store.Save(token, user); saveErr != nil {
			c.logger.WithError(saveErr).Error("error persisting refreshed user")
		}
		c.mu.Lock()
		c.user = &user
		c.mu.Unlock()
		c.logger.WithField("roles", user.Roles).Info("session restored")
	case meta.IsAuthentication(err):
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.WithError(clearErr).Error("error clearing credentials")
		}
		c.mu.Lock()
		c.user = nil
		c.mu.Unlock()
		c.logger.Info("stored token was rejected; session is anonymous")
	default:
		c.logger.WithError(err).Warn(
			"error verifying stored session; keeping cached user",
		)
	}
}

func (c *Controller) isGeneration(generation uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation == generation
}

func (c *Controller) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialLoading {
		c.initialLoading = false
		close(c.ready)
	}
}

// Login exchanges credentials for a session. It never fails outright; the
// outcome is reported in the LoginResult.
func (c *Controller) Login(
	ctx context.Context,
	creds authx.Credentials,
) LoginResult {
	c.setActionLoading(true)
	defer c.setActionLoading(false)

	result := c.login(ctx, creds)
	if c.onLogin != nil {
		c.onLogin(result.Success)
	}
	return result
}

func (c *Controller) login(
	ctx context.Context,
	creds authx.Credentials,
) LoginResult {
	logger := c.logger.WithField("email", creds.Email)
	resp, err := c.sessions.Login(ctx, creds)
	if err != nil {
		message := meta.MessageFrom(err)
		if message == "" {
			message = MessageFallback
		}
		logger.WithError(err).WithField("status", meta.StatusCode(err)).Warn(
			"login failed",
		)
		return LoginResult{Message: message}
	}
	if resp.Token == "" {
		logger.Error("login response did not include a token")
		return LoginResult{Message: MessageMissingToken}
	}
	if resp.User == nil {
		logger.Error("login response did not include a user")
		return LoginResult{Message: MessageMissingUser}
	}
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if err := c.store.Save(resp.Token, *resp.User); err != nil {
		logger.WithError(err).Error("error persisting credentials")
		return LoginResult{Message: MessageSaveFailed}
	}
	c.mu.Lock()
	c.user = resp.User.Copy()
	c.generation++
	c.mu.Unlock()
	logger.WithField("roles", resp.User.Roles).Info("logged in")
	return LoginResult{Success: true, Message: resp.Message}
}

// Logout ends the session. The API is told on a best-effort basis; local
// state is cleared regardless.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.sessions.Logout(ctx); err != nil {
		c.logger.WithError(err).Debug("ignoring error logging out of the API")
	}
	c.storeMu.Lock()
	if err := c.store.Clear(); err != nil {
		c.logger.WithError(err).Error("error clearing credentials")
	}
	c.mu.Lock()
	c.user = nil
	c.generation++
	c.mu.Unlock()
	c.storeMu.Unlock()
	c.logger.Info("logged out")
}

// Invalidate makes the session anonymous after the API rejected the token.
// The stored credentials have already been cleared by then.
func (c *Controller) Invalidate(reason string) {
	c.storeMu.Lock()
	c.mu.Lock()
	c.user = nil
	c.generation++
	c.mu.Unlock()
	c.storeMu.Unlock()
	c.logger.WithField("reason", reason).Warn("session invalidated")
}

// HandleEvent reacts to session events. It is meant to be subscribed to an
// events.Receiver.
func (c *Controller) HandleEvent(e events.Event) {
	if e.Type == events.SessionInvalidated {
		c.Invalidate(e.Reason)
	}
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		User:           c.user.Copy(),
		InitialLoading: c.initialLoading,
		ActionLoading:  c.actionLoading,
	}
}

// User returns a copy of the current User or nil.
func (c *Controller) User() *authx.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.Copy()
}

func (c *Controller) setActionLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actionLoading = loading
}

// HasRole returns true if the current User holds any of the given roles.
func (c *Controller) HasRole(roles ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.HasAnyRole(roles...)
}

// HasPermission returns true if the current User holds the named
// permission.
func (c *Controller) HasPermission(permission string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.HasPermission(permission)
}

// IsSuperAdmin returns true if the current User is a super-admin.
func (c *Controller) IsSuperAdmin() bool {
	return c.HasRole(authx.RoleSuperAdmin)
}

// IsDirecteur returns true if the current User may manage content, i.e. is a
// directeur or a super-admin.
func (c *Controller) IsDirecteur() bool {
	return c.HasRole(authx.RoleSuperAdmin, authx.RoleDirecteur)
}
