package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func logout(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("logout requires no arguments")
	}

	comps, err := getComponents(c)
	if err != nil {
		return err
	}

	// The API is told on a best-effort basis; the stored credentials are
	// cleared even if that fails.
	comps.controller.Logout(c.Context)

	fmt.Println("Logout was successful.")
	return nil
}
