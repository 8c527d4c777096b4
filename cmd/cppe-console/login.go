package main

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func login(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("login requires no arguments")
	}

	creds := authx.Credentials{
		Email:    strings.TrimSpace(c.String(flagEmail)),
		Password: c.String(flagPassword),
	}
	if creds.Email == "" {
		if err := survey.AskOne(
			&survey.Input{Message: "Email?"},
			&creds.Email,
			survey.WithValidator(survey.Required),
		); err != nil {
			return errors.Wrap(err, "error prompting for email")
		}
	}
	if creds.Password == "" {
		if err := survey.AskOne(
			&survey.Password{Message: "Password?"},
			&creds.Password,
			survey.WithValidator(survey.Required),
		); err != nil {
			return errors.Wrap(err, "error prompting for password")
		}
	}

	comps, err := getComponents(c)
	if err != nil {
		return err
	}

	result := comps.controller.Login(c.Context, creds)
	if !result.Success {
		return errors.New(result.Message)
	}

	user := comps.controller.User()
	fmt.Printf(
		"\nYou are logged in as %s (%s).\n",
		user.Name,
		strings.Join(user.Roles, ", "),
	)
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	return nil
}
