// Package sdk is the entry point to the CPPE API. It assembles the single
// HTTP client every call passes through and the specialized clients built on
// it.
package sdk

import (
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/cppe-issia/console/sdk/backoffice"
	"github.com/cppe-issia/console/sdk/internal/restmachinery"
)

const (
	// DefaultLoginPath is the API path of the login endpoint.
	DefaultLoginPath = restmachinery.DefaultLoginPath
	// DefaultLoginRoute is the console route of the login screen.
	DefaultLoginRoute = restmachinery.DefaultLoginRoute
)

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions = restmachinery.APIClientOptions

// TokenStore is the subset of credentials.Store the API client depends on.
type TokenStore = restmachinery.TokenStore

// APIClient is the root of a tree of specialized API clients.
type APIClient interface {
	// Sessions returns a specialized client for login, logout and "who am I"
	// calls.
	Sessions() authx.SessionsClient
	// Backoffice returns the root of the specialized clients for back-office
	// resources.
	Backoffice() backoffice.APIClient
	// AbortPending cancels every in-flight request and returns how many were
	// canceled.
	AbortPending() int
	// PendingCount returns the number of requests currently in flight.
	PendingCount() int
}

type apiClient struct {
	baseClient       *restmachinery.BaseClient
	sessionsClient   authx.SessionsClient
	backofficeClient backoffice.APIClient
}

// NewAPIClient returns an APIClient for the API at apiAddress. Every
// specialized client shares one BaseClient, so the bearer token read from
// tokens and the 401 handling apply to all of them alike.
func NewAPIClient(
	apiAddress string,
	tokens TokenStore,
	opts *APIClientOptions,
) APIClient {
	baseClient := restmachinery.NewBaseClient(apiAddress, tokens, opts)
	return &apiClient{
		baseClient:       baseClient,
		sessionsClient:   authx.NewSessionsClient(baseClient),
		backofficeClient: backoffice.NewAPIClient(baseClient),
	}
}

func (a *apiClient) Sessions() authx.SessionsClient {
	return a.sessionsClient
}

func (a *apiClient) Backoffice() backoffice.APIClient {
	return a.backofficeClient
}

func (a *apiClient) AbortPending() int {
	return a.baseClient.AbortPending()
}

func (a *apiClient) PendingCount() int {
	return a.baseClient.PendingCount()
}
