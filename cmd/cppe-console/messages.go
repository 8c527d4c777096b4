package main

import (
	"fmt"
	"strings"

	"github.com/cppe-issia/console/sdk/meta"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func messagesList(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("messages list requires no arguments")
	}
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

	opts := &meta.ListOptions{
		Page:    c.Int(flagPage),
		Search:  c.String(flagSearch),
		Filters: map[string]string{},
	}
	if c.Bool(flagUnread) {
		opts.Filters["lu"] = "0"
	}
	list, err := comps.client.Backoffice().Messages().List(c.Context, opts)
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		fmt.Println("No messages found.")
		return nil
	}

	if strings.ToLower(output) != "table" {
		return printStructured(output, list, "list messages")
	}
	table := uitable.New()
	table.AddRow("ID", "FROM", "EMAIL", "SUBJECT", "READ?")
	for _, message := range list.Items {
		table.AddRow(
			message.ID,
			message.Name,
			message.Email,
			message.Subject,
			message.Read,
		)
	}
	fmt.Println(table)
	return nil
}

func messagesMarkRead(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("messages read requires one argument-- a message ID")
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	comps, err := getRestoredComponents(c)
	if err != nil {
		return err
	}
	if err := comps.requireUser(); err != nil {
		return err
	}

	if err := comps.client.Backoffice().Messages().MarkRead(
		c.Context,
		id,
	); err != nil {
		return err
	}

	fmt.Printf("Message %d marked as read.\n", id)
	return nil
}
