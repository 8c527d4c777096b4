package authx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/cppe-issia/console/sdk/internal/restmachinery"
	"github.com/cppe-issia/console/sdk/meta"
	"github.com/pkg/errors"
)

// Credentials are what a back-office user presents to log in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the payload of a successful login call. Token may be
// empty if the API misbehaves; callers must treat that as a failure.
type LoginResponse struct {
	User    *User
	Token   string
	Message string
}

// SessionsClient is the specialized client for the CPPE API's auth
// endpoints.
type SessionsClient interface {
	// Login exchanges credentials for a bearer token and the User record.
	Login(context.Context, Credentials) (LoginResponse, error)
	// Logout ends the current session server-side.
	Logout(context.Context) error
	// Me returns the User the current bearer token belongs to.
	Me(context.Context) (User, error)
}

type sessionsClient struct {
	*restmachinery.BaseClient
}

// NewSessionsClient returns a specialized client for the CPPE API's auth
// endpoints that issues every call through baseClient.
func NewSessionsClient(baseClient *restmachinery.BaseClient) SessionsClient {
	return &sessionsClient{
		BaseClient: baseClient,
	}
}

func (s *sessionsClient) Login(
	ctx context.Context,
	creds Credentials,
) (LoginResponse, error) {
	envelope := meta.Envelope{}
	if err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			Path:       restmachinery.DefaultLoginPath,
			ReqBodyObj: creds,
			RespObj:    &envelope,
		},
	); err != nil {
		return LoginResponse{}, err
	}
	payload := struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	}{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return LoginResponse{}, errors.Wrap(err, "error unmarshaling login payload")
		}
	}
	return LoginResponse{
		User:    payload.User,
		Token:   payload.Token,
		Message: envelope.Message,
	}, nil
}

func (s *sessionsClient) Logout(ctx context.Context) error {
	return s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path:   "auth/logout",
		},
	)
}

func (s *sessionsClient) Me(ctx context.Context) (User, error) {
	body := struct {
		meta.Envelope
		User json.RawMessage `json:"user"`
	}{}
	if err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "auth/me",
			RespObj: &body,
		},
	); err != nil {
		return User{}, err
	}
	raw, err := userPayload(body.Data, body.User)
	if err != nil {
		return User{}, err
	}
	user := User{}
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, errors.Wrap(err, "error unmarshaling user")
	}
	return user, nil
}

// userPayload locates the User record within a "who am I" response. The API
// has been seen to return {data:{user:{...}}}, {data:{...}} and {user:{...}}.
func userPayload(data, topLevelUser json.RawMessage) (json.RawMessage, error) {
	if isPresent(data) {
		nested := struct {
			User json.RawMessage `json:"user"`
		}{}
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, errors.Wrap(err, "error unmarshaling response data")
		}
		if isPresent(nested.User) {
			return nested.User, nil
		}
		return data, nil
	}
	if isPresent(topLevelUser) {
		return topLevelUser, nil
	}
	return nil, errors.New("response did not include a user")
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
