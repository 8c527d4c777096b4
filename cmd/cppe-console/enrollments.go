package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cppe-issia/console/sdk/meta"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var enrollmentsCommand = &cli.Command{
	Name:  "enrollments",
	Usage: "Manage enrollments",
	Subcommands: []*cli.Command{
		{
			Name:  "export",
			Usage: "Export enrollments as a spreadsheet or one enrollment as a PDF",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  flagFormat,
					Usage: "The export format. Supported formats: excel, pdf",
					Value: "excel",
				},
				&cli.Int64Flag{
					Name:  flagID,
					Usage: "The enrollment to export (required for pdf)",
				},
				&cli.StringFlag{
					Name:     flagFile,
					Aliases:  []string{"f"},
					Usage:    "Write the export to the specified file",
					Required: true,
				},
				&cli.StringFlag{
					Name:  flagSection,
					Usage: "Export only enrollments for the specified section",
				},
				&cli.StringFlag{
					Name:  flagStatus,
					Usage: "Export only enrollments in the specified status",
				},
			},
			Action: enrollmentsExport,
		},
		{
			Name:  "list",
			Usage: "List enrollments",
			Flags: []cli.Flag{
				cliFlagOutput,
				cliFlagPage,
				cliFlagSearch,
				&cli.StringFlag{
					Name:  flagSection,
					Usage: "Return only enrollments for the specified section",
				},
				&cli.StringFlag{
					Name:  flagStatus,
					Usage: "Return only enrollments in the specified status",
				},
			},
			Action: enrollmentsList,
		},
	},
}

func enrollmentListOptions(c *cli.Context) *meta.ListOptions {
	opts := &meta.ListOptions{
		Page:    c.Int(flagPage),
		Search:  c.String(flagSearch),
		Filters: map[string]string{},
	}
	if section := c.String(flagSection); section != "" {
		opts.Filters["section"] = section
	}
	if status := c.String(flagStatus); status != "" {
		opts.Filters["statut"] = status
	}
	return opts
}

func enrollmentsList(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("enrollments list requires no arguments")
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

	list, err := comps.client.Backoffice().Enrollments().List(
		c.Context,
		enrollmentListOptions(c),
	)
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		fmt.Println("No enrollments found.")
		return nil
	}

	if strings.ToLower(output) != "table" {
		return printStructured(output, list, "list enrollments")
	}
	table := uitable.New()
	table.AddRow("ID", "CHILD", "SECTION", "STATUS", "PAYMENT")
	for _, enrollment := range list.Items {
		table.AddRow(
			enrollment.ID,
			enrollment.ChildLastName+" "+enrollment.ChildFirstNames,
			enrollment.Section,
			enrollment.Status,
			enrollment.PaymentStatus,
		)
	}
	fmt.Println(table)
	if list.LastPage > 1 {
		fmt.Printf(
			"\nPage %d of %d (%d enrollments).\n",
			list.CurrentPage,
			list.LastPage,
			list.Total,
		)
	}
	return nil
}

func enrollmentsExport(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("enrollments export requires no arguments")
	}
	format := strings.ToLower(c.String(flagFormat))
	id := c.Int64(flagID)
	switch format {
	case "excel":
	case "pdf":
		if id <= 0 {
			return errors.New("enrollments export --format pdf requires --id")
		}
	default:
		return errors.Errorf("unknown export format %q", format)
	}

	comps, err := getRestoredComponents(c)
	if err != nil {
		return err
	}
	if err := comps.requireUser(); err != nil {
		return err
	}

	path := c.String(flagFile)
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "error creating %s", path)
	}
	defer file.Close()

	enrollments := comps.client.Backoffice().Enrollments()
	if format == "pdf" {
		err = enrollments.ExportPDF(c.Context, id, file)
	} else {
		err = enrollments.ExportExcel(c.Context, enrollmentListOptions(c), file)
	}
	if err != nil {
		os.Remove(path) // nolint: errcheck
		return err
	}

	fmt.Printf("Export written to %s.\n", path)
	return nil
}
