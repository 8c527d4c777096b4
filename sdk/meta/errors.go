package meta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// APIResponse captures what the API returned alongside a non-success status.
// It is embedded in every typed API error so that callers retain access to
// the original status code and response body.
type APIResponse struct {
	// Code is the HTTP status code of the response.
	Code int `json:"-"`
	// Message is the optional human-readable message supplied by the API.
	Message string `json:"message,omitempty"`
	// Body is the raw, undecoded response body.
	Body []byte `json:"-"`
}

// StatusCode returns the HTTP status code of the response.
func (a *APIResponse) StatusCode() int {
	return a.Code
}

// ErrAuthentication represents an error wherein the API could not
// authenticate the request (HTTP 401).
type ErrAuthentication struct {
	APIResponse `json:",inline"`
}

func (e *ErrAuthentication) Error() string {
	if e.Message == "" {
		return "Could not authenticate the request."
	}
	return fmt.Sprintf("Could not authenticate the request: %s", e.Message)
}

// ErrAuthorization represents an error wherein the authenticated principal
// is not permitted to perform the requested operation (HTTP 403).
type ErrAuthorization struct {
	APIResponse `json:",inline"`
}

func (e *ErrAuthorization) Error() string {
	if e.Message == "" {
		return "The request is not authorized."
	}
	return fmt.Sprintf("The request is not authorized: %s", e.Message)
}

// ErrBadRequest represents an error wherein the API rejected a malformed or
// invalid request (HTTP 400 or 422). Details maps field names to validation
// messages when the API supplies them.
type ErrBadRequest struct {
	APIResponse `json:",inline"`
	Details     map[string][]string `json:"errors,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	msg := "Bad request"
	if e.Message != "" {
		msg = fmt.Sprintf("Bad request: %s", e.Message)
	}
	if len(e.Details) == 0 {
		return msg
	}
	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var b strings.Builder
	b.WriteString(msg)
	b.WriteString(":")
	for i, field := range fields {
		fmt.Fprintf(
			&b,
			"\n  %d. %s: %s",
			i,
			field,
			strings.Join(e.Details[field], "; "),
		)
	}
	return b.String()
}

// ErrNotFound represents an error wherein a requested resource does not
// exist (HTTP 404).
type ErrNotFound struct {
	APIResponse `json:",inline"`
}

func (e *ErrNotFound) Error() string {
	if e.Message == "" {
		return "The requested resource was not found."
	}
	return e.Message
}

// ErrConflict represents an error wherein a request conflicts with the
// current state of a resource (HTTP 409).
type ErrConflict struct {
	APIResponse `json:",inline"`
}

func (e *ErrConflict) Error() string {
	if e.Message == "" {
		return "The request conflicts with the current state of the resource."
	}
	return e.Message
}

// ErrInternalServer represents an unexpected failure on the API server
// (HTTP 500).
type ErrInternalServer struct {
	APIResponse `json:",inline"`
}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}

// ErrUnexpectedStatus represents any other non-success status.
type ErrUnexpectedStatus struct {
	APIResponse `json:",inline"`
}

func (e *ErrUnexpectedStatus) Error() string {
	return fmt.Sprintf("received %d from API server", e.Code)
}

type statusCoder interface {
	StatusCode() int
}

// StatusCode returns the HTTP status code carried by err or by any error it
// wraps. It returns 0 if err is not (and does not wrap) an API error.
func StatusCode(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// MessageFrom returns the human-readable message supplied by the API with
// err, or an empty string if there is none.
func MessageFrom(err error) string {
	var m interface{ apiMessage() string }
	if errors.As(err, &m) {
		return m.apiMessage()
	}
	return ""
}

func (a *APIResponse) apiMessage() string {
	return a.Message
}

// IsAuthentication returns true if err is or wraps an ErrAuthentication.
func IsAuthentication(err error) bool {
	var authnErr *ErrAuthentication
	return errors.As(err, &authnErr)
}
