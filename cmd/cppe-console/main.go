package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cppe-issia/console/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "cppe-console"
	app.Usage = "Back-office console for the CPPE d'Issia website"
	app.Version = fmt.Sprintf("%s (commit %s)", version.Version(), version.Commit())
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure API server connections when using TLS",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "dashboard",
			Usage:  "Show the back-office dashboard counters",
			Flags:  []cli.Flag{cliFlagOutput},
			Action: dashboard,
		},
		enrollmentsCommand,
		{
			Name:  "login",
			Usage: "Log in to the CPPE API",
			Description: "Prompts for any credentials not supplied as flags. The " +
				"session is stored by the configured credentials backend.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagEmail,
					Aliases: []string{"e"},
					Usage:   "Specify the email address non-interactively",
				},
				&cli.StringFlag{
					Name:    flagPassword,
					Aliases: []string{"p"},
					Usage:   "Specify the password non-interactively",
				},
			},
			Action: login,
		},
		{
			Name:   "logout",
			Usage:  "Log out of the CPPE API",
			Action: logout,
		},
		{
			Name:  "messages",
			Usage: "Manage contact messages",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List contact messages",
					Flags: []cli.Flag{
						cliFlagOutput,
						cliFlagPage,
						cliFlagSearch,
						&cli.BoolFlag{
							Name:  flagUnread,
							Usage: "Return only unread messages",
						},
					},
					Action: messagesList,
				},
				{
					Name:      "read",
					Usage:     "Mark a contact message as read",
					ArgsUsage: "MESSAGE_ID",
					Action:    messagesMarkRead,
				},
			},
		},
		{
			Name:  "serve",
			Usage: "Serve the back-office console",
			Description: "Configuration is read from CPPE_* environment " +
				"variables.",
			Action: serve,
		},
		{
			Name:   "whoami",
			Usage:  "Show the logged in user",
			Flags:  []cli.Flag{cliFlagOutput},
			Action: whoami,
		},
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	fmt.Println()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Printf("\n%s\n\n", err)
		stop()
		os.Exit(1)
	}
	fmt.Println()
}
