package main

import "github.com/urfave/cli/v2"

const (
	flagEmail    = "email"
	flagFile     = "file"
	flagFormat   = "format"
	flagID       = "id"
	flagInsecure = "insecure"
	flagOutput   = "output"
	flagPage     = "page"
	flagPassword = "password"
	flagSearch   = "search"
	flagSection  = "section"
	flagStatus   = "status"
	flagUnread   = "unread"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Return output in another format. Supported formats: table, " +
			"yaml, json",
		Value: "table",
	}
	cliFlagPage = &cli.IntFlag{
		Name:  flagPage,
		Usage: "Retrieve the specified page of results",
	}
	cliFlagSearch = &cli.StringFlag{
		Name:    flagSearch,
		Aliases: []string{"q"},
		Usage:   "Return only results matching the search term",
	}
)
