package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/urfave/cli/v2"
)

func whoami(c *cli.Context) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	comps, err := getRestoredComponents(c)
	if err != nil {
		return err
	}
	if err := comps.requireUser(); err != nil {
		return err
	}
	user := comps.controller.User()

	if strings.ToLower(output) != "table" {
		return printStructured(output, user, "who am I")
	}
	table := uitable.New()
	table.AddRow("ID", "NAME", "EMAIL", "ROLES")
	table.AddRow(user.ID, user.Name, user.Email, strings.Join(user.Roles, ", "))
	fmt.Println(table)
	return nil
}
