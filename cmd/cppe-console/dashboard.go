package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func dashboard(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("dashboard requires no arguments")
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

	stats, err := comps.client.Backoffice().Dashboard().Stats(c.Context)
	if err != nil {
		return err
	}

	if strings.ToLower(output) != "table" {
		return printStructured(output, stats, "get dashboard")
	}
	table := uitable.New()
	table.AddRow("ENROLLMENTS", stats.EnrollmentsTotal)
	table.AddRow("  PENDING", stats.EnrollmentsPending)
	table.AddRow("  THIS MONTH", stats.EnrollmentsThisMonth)
	sections := make([]string, 0, len(stats.EnrollmentsBySection))
	for section := range stats.EnrollmentsBySection {
		sections = append(sections, section)
	}
	sort.Strings(sections)
	for _, section := range sections {
		table.AddRow(
			"  "+strings.ToUpper(section),
			stats.EnrollmentsBySection[section],
		)
	}
	table.AddRow("NEWS PUBLISHED", stats.NewsPublished)
	table.AddRow("NEWS DRAFTS", stats.NewsDrafts)
	table.AddRow("UNREAD MESSAGES", stats.UnreadMessages)
	table.AddRow("GALLERY PHOTOS", stats.GalleryPhotos)
	fmt.Println(table)
	return nil
}
