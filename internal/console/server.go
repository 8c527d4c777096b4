// Package console is the back-office application shell. It serves the admin
// pages, gates them on the state of the operator's session and turns a
// session invalidated by the API into a redirect to the login screen.
package console

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cppe-issia/console/internal/events"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Config is the subset of the console configuration the Server depends on.
type Config interface {
	Port() int
	TLSEnabled() bool
	TLSCertPath() string
	TLSKeyPath() string
	CORSAllowedOrigins() []string
}

// Server is an interface for the component that serves the console.
type Server interface {
	// ListenAndServe serves console requests until ctx is canceled or an error
	// occurs.
	ListenAndServe(ctx context.Context) error
	// Handler returns the root handler, with every route and middleware
	// applied.
	Handler() http.Handler
}

type server struct {
	config  Config
	handler http.Handler
	logger  logrus.FieldLogger
}

// ServerOptions encapsulates optional Server configuration.
type ServerOptions struct {
	// MetricsHandler, if non-nil, is served at /metrics.
	MetricsHandler http.Handler
	// Invalidations, if non-nil, is subscribed to so that sessions
	// invalidated by the API are logged.
	Invalidations events.Receiver
	Logger        logrus.FieldLogger
}

// NewServer returns a console server.
func NewServer(
	config Config,
	endpoints []Endpoints,
	opts *ServerOptions,
) Server {
	if opts == nil {
		opts = &ServerOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Use(withLocation)

	// Health check and metrics; no filters applied to these requests
	router.HandleFunc("/healthz", checkHealth).Methods(http.MethodGet)
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}

	for _, eps := range endpoints {
		eps.Register(router)
	}

	if opts.Invalidations != nil {
		opts.Invalidations.Subscribe(func(e events.Event) {
			if e.Type == events.SessionInvalidated {
				logger.WithField("reason", e.Reason).Info(
					"session invalidated; protected pages now redirect to login",
				)
			}
		})
	}

	return &server{
		config: config,
		handler: cors.New(
			cors.Options{
				AllowedOrigins:   config.CORSAllowedOrigins(),
				AllowedMethods:   []string{"GET", "POST"},
				AllowCredentials: true,
			},
		).Handler(router),
		logger: logger,
	}
}

func (s *server) Handler() http.Handler {
	return s.handler
}

func (s *server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port()),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tlsEnabled := s.config.TLSEnabled() &&
		fileExists(s.config.TLSCertPath()) &&
		fileExists(s.config.TLSKeyPath())
	if !tlsEnabled {
		srv.Handler = h2c.NewHandler(s.handler, &http2.Server{})
	}

	errCh := make(chan error, 1)
	go func() {
		if tlsEnabled {
			s.logger.Infof(
				"console is listening with TLS enabled on 0.0.0.0:%d",
				s.config.Port(),
			)
			errCh <- srv.ListenAndServeTLS(
				s.config.TLSCertPath(),
				s.config.TLSKeyPath(),
			)
			return
		}
		s.logger.Infof(
			"console is listening without TLS on 0.0.0.0:%d",
			s.config.Port(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "error serving console")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			10*time.Second,
		)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "error shutting down console")
		}
		return nil
	}
}

func checkHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}

func fileExists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}
