package main

import (
	"github.com/cppe-issia/console/internal/console"
	"github.com/cppe-issia/console/internal/version"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serve(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("serve requires no arguments")
	}

	comps, err := getComponents(c)
	if err != nil {
		return err
	}
	comps.logger.WithFields(logrus.Fields{
		"version": version.Version(),
		"commit":  version.Commit(),
		"api":     comps.config.APIAddress(),
		"backend": comps.config.CredentialsBackend(),
	}).Info("starting CPPE console")

	// Restoration settles in the background; protected pages show a loading
	// screen until it does.
	comps.controller.Start(c.Context)

	base := &console.BaseEndpoints{
		Guard:   console.NewGuard(comps.controller, comps.logger),
		Session: comps.controller,
		Logger:  comps.logger,
	}
	srv := console.NewServer(
		comps.config,
		[]console.Endpoints{
			console.NewAuthEndpoints(base),
			console.NewAdminEndpoints(base, comps.client.Backoffice()),
		},
		&console.ServerOptions{
			MetricsHandler: comps.metrics.Handler(),
			Invalidations:  comps.broker,
			Logger:         comps.logger,
		},
	)
	if err := srv.ListenAndServe(c.Context); err != nil {
		return err
	}
	comps.logger.WithField(
		"aborted", comps.client.AbortPending(),
	).Info("console stopped")
	return nil
}
