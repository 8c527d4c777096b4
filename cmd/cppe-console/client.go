package main

import (
	"context"

	"github.com/cppe-issia/console/internal/config"
	"github.com/cppe-issia/console/internal/events"
	"github.com/cppe-issia/console/internal/logging"
	"github.com/cppe-issia/console/internal/metrics"
	"github.com/cppe-issia/console/internal/redis"
	"github.com/cppe-issia/console/internal/session"
	"github.com/cppe-issia/console/sdk"
	"github.com/cppe-issia/console/sdk/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// components are what every command builds on. All API calls go through one
// client, and a 401 on any of them reaches the session controller through
// the broker.
type components struct {
	config     config.Config
	logger     *logrus.Logger
	store      credentials.Store
	broker     *events.Broker
	metrics    *metrics.Metrics
	client     sdk.APIClient
	controller *session.Controller
}

func getComponents(c *cli.Context) (*components, error) {
	cfg, err := config.GetConfigFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration")
	}
	logger := logging.NewLogger(cfg.LogLevel(), cfg.LogFormat())

	store, err := getCredentialsStore(c.Context, cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing credentials store")
	}

	broker := events.NewBroker()
	m := metrics.New()
	m.CountInvalidations(broker)

	client := sdk.NewAPIClient(
		cfg.APIAddress(),
		store,
		&sdk.APIClientOptions{
			AllowInsecureConnections: cfg.AllowInsecureAPIConnections() ||
				c.Bool(flagInsecure),
			OnSessionInvalidated: events.SessionInvalidatedFunc(broker),
			WrapTransport:        m.InstrumentTransport,
			Logger:               logger,
		},
	)

	controller := session.NewController(
		store,
		client.Sessions(),
		&session.ControllerOptions{
			Logger:  logger,
			OnLogin: m.RecordLogin,
		},
	)
	broker.Subscribe(controller.HandleEvent)

	return &components{
		config:     cfg,
		logger:     logger,
		store:      store,
		broker:     broker,
		metrics:    m,
		client:     client,
		controller: controller,
	}, nil
}

func getCredentialsStore(
	ctx context.Context,
	cfg config.Config,
	logger logrus.FieldLogger,
) (credentials.Store, error) {
	switch cfg.CredentialsBackend() {
	case config.CredentialsBackendRedis:
		redisClient, prefix, err := redis.Connect(ctx, logger)
		if err != nil {
			return nil, err
		}
		return credentials.NewRedisStore(redisClient, prefix), nil
	case config.CredentialsBackendMemory:
		return credentials.NewMemoryStore(), nil
	default:
		return credentials.NewFileStore(cfg.CredentialsFile())
	}
}

// getRestoredComponents is getComponents followed by restoration of any
// stored session.
func getRestoredComponents(c *cli.Context) (*components, error) {
	comps, err := getComponents(c)
	if err != nil {
		return nil, err
	}
	if err := comps.controller.Restore(c.Context); err != nil {
		return nil, errors.Wrap(err, "error restoring session")
	}
	return comps, nil
}

// requireUser returns an error if the restored session is anonymous.
func (c *components) requireUser() error {
	if c.controller.User() == nil {
		return errors.New(
			"you are not logged in; run \"cppe-console login\" first",
		)
	}
	return nil
}
