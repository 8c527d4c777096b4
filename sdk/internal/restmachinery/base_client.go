package restmachinery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/cppe-issia/console/sdk/meta"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultLoginPath is the API path of the login endpoint.
	DefaultLoginPath = "auth/login"
	// DefaultLoginRoute is the console route of the login screen.
	DefaultLoginRoute = "/admin/login"

	contentTypeJSON = "application/json"
)

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions struct {
	// AllowInsecureConnections skips verification of the API server's TLS
	// certificate.
	AllowInsecureConnections bool
	// LoginPath is the API path of the login endpoint. A 401 in response to a
	// request for this path never invalidates the session.
	LoginPath string
	// LoginRoute is the console route of the login screen. A 401 received while
	// this route is being served never invalidates the session.
	LoginRoute string
	// OnSessionInvalidated, if non-nil, is called after a 401 has caused the
	// stored credentials to be cleared.
	OnSessionInvalidated func(reason string)
	// WrapTransport, if non-nil, wraps the underlying network transport. It is
	// used to instrument it.
	WrapTransport func(http.RoundTripper) http.RoundTripper
	// Logger receives request/response diagnostics. It defaults to a logger
	// that discards everything.
	Logger logrus.FieldLogger
}

// BaseClient is the one HTTP client through which every call to the CPPE API
// passes.
type BaseClient struct {
	APIAddress string
	HTTPClient *http.Client
	pending    *pendingRequests
	logger     logrus.FieldLogger
}

// NewBaseClient returns a BaseClient for the API at apiAddress that reads its
// bearer token from tokens.
func NewBaseClient(
	apiAddress string,
	tokens TokenStore,
	opts *APIClientOptions,
) *BaseClient {
	if opts == nil {
		opts = &APIClientOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	loginRoute := opts.LoginRoute
	if loginRoute == "" {
		loginRoute = DefaultLoginRoute
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.AllowInsecureConnections, // nolint: gosec
		},
	}
	if opts.WrapTransport != nil {
		transport = opts.WrapTransport(transport)
	}

	pending := newPendingRequests()
	// Cookie jars created with nil options never return an error
	jar, _ := cookiejar.New(nil)

	return &BaseClient{
		APIAddress: strings.TrimRight(apiAddress, "/"),
		HTTPClient: &http.Client{
			Jar: jar,
			Transport: &bearerTokenTransport{
				tokens: tokens,
				logger: logger,
				next: &unauthorizedTransport{
					tokens:        tokens,
					pending:       pending,
					loginPath:     loginPath,
					loginRoute:    loginRoute,
					onInvalidated: opts.OnSessionInvalidated,
					logger:        logger,
					next:          transport,
				},
			},
		},
		pending: pending,
		logger:  logger,
	}
}

// AbortPending cancels every in-flight request and returns how many were
// canceled.
func (b *BaseClient) AbortPending() int {
	return b.pending.abortAllExcept(0)
}

// PendingCount returns the number of requests currently in flight.
func (b *BaseClient) PendingCount() int {
	return b.pending.count()
}

// ExecuteRequest submits req and decodes the response into req.RespObj or
// copies it to req.RespWriter.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespWriter != nil {
		if _, err := io.Copy(req.RespWriter, resp.Body); err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		return nil
	}
	if req.RespObj != nil {
		respBodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		// e.g. 204 No Content
		if len(bytes.TrimSpace(respBodyBytes)) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits req and returns the raw response if its status
// indicates success. Otherwise it returns a typed error from the meta
// package. The caller must close the response body. Canceling ctx aborts the
// request.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		case io.Reader:
			reqBodyReader = rb
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	ctx, release := b.pending.track(ctx)

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		fmt.Sprintf("%s/%s", b.APIAddress, strings.TrimLeft(req.Path, "/")),
		reqBodyReader,
	)
	if err != nil {
		release()
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	// JSON is the default content type of every call, with or without a body
	r.Header.Set("Accept", contentTypeJSON)
	r.Header.Set("Content-Type", contentTypeJSON)
	if req.ContentType != "" {
		r.Header.Set("Content-Type", req.ContentType)
	}
	r.Header.Set("X-Request-ID", uuid.NewV4().String())
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		release()
		return nil, errors.Wrap(err, "error invoking API")
	}

	if (req.SuccessCode == 0 && (resp.StatusCode < 200 || resp.StatusCode > 299)) ||
		(req.SuccessCode != 0 && resp.StatusCode != req.SuccessCode) {
		defer release()
		defer resp.Body.Close()
		return nil, apiErrorFromResponse(resp)
	}
	resp.Body = &releasingBody{ReadCloser: resp.Body, release: release}
	return resp, nil
}

// apiErrorFromResponse maps a non-success response onto a typed error. The
// status code and raw body are always preserved, even when the body cannot
// be decoded.
func apiErrorFromResponse(resp *http.Response) error {
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading error response body")
	}
	apiResp := meta.APIResponse{
		Code: resp.StatusCode,
		Body: bodyBytes,
	}
	// HTTP Response code hints at what sort of error might be in the body
	// of the response
	var apiErr error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		apiErr = &meta.ErrAuthentication{APIResponse: apiResp}
	case http.StatusForbidden:
		apiErr = &meta.ErrAuthorization{APIResponse: apiResp}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		apiErr = &meta.ErrBadRequest{APIResponse: apiResp}
	case http.StatusNotFound:
		apiErr = &meta.ErrNotFound{APIResponse: apiResp}
	case http.StatusConflict:
		apiErr = &meta.ErrConflict{APIResponse: apiResp}
	case http.StatusInternalServerError:
		apiErr = &meta.ErrInternalServer{APIResponse: apiResp}
	default:
		apiErr = &meta.ErrUnexpectedStatus{APIResponse: apiResp}
	}
	if len(bodyBytes) > 0 {
		// Not every error body is JSON; whatever cannot be decoded stays
		// available through Body.
		_ = json.Unmarshal(bodyBytes, apiErr)
	}
	return apiErr
}

// releasingBody deregisters a tracked request once its body is closed.
type releasingBody struct {
	io.ReadCloser
	release func()
}

func (r *releasingBody) Close() error {
	err := r.ReadCloser.Close()
	r.release()
	return err
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}
