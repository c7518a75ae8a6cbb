package command

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gymdesk-go/internal/cli/output"
)

// TrainerCommand returns the trainer subcommand group.
func TrainerCommand() *cli.Command {
	return &cli.Command{
		Name:  "trainer",
		Usage: "Manage trainers",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a trainer and print the generated credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name", Required: true},
					&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: true},
					&cli.StringFlag{Name: "specialization", Usage: "Training type name", Required: true},
				},
				Action: trainerRegister,
			},
			{
				Name:      "get",
				Usage:     "Show a trainer profile (only your own)",
				ArgsUsage: "[USERNAME]",
				Action:    trainerGet,
			},
			{
				Name:  "available",
				Usage: "List active trainers not yet assigned to a trainee",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "trainee", Usage: "Trainee username (defaults to the logged-in user)"},
				},
				Action: trainerAvailable,
			},
			{
				Name:      "trainings",
				Usage:     "List a trainer's trainings (only your own)",
				ArgsUsage: "[USERNAME]",
				Flags: append(trainingFilterFlags(),
					&cli.StringFlag{Name: "trainee", Usage: "Filter by trainee name"},
				),
				Action: trainerTrainings,
			},
		},
	}
}

func trainerRegister(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]string{
		"firstName":      c.String("first-name"),
		"lastName":       c.String("last-name"),
		"specialization": c.String("specialization"),
	}
	var creds credentials
	if err := e.client.Post(ctx, "/api/v1/trainers", body, &creds); err != nil {
		return err
	}
	return e.print(creds)
}

func trainerGet(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	username, err := e.usernameArg(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var profile trainerProfile
	if err := e.client.Get(ctx, "/api/v1/trainers/"+url.PathEscape(username), &profile); err != nil {
		return err
	}
	if err := e.print(profile); err != nil {
		return err
	}
	if e.format == output.FormatTable && len(profile.Trainees) > 0 {
		fmt.Fprintln(e.out, "\nTrainees:")
		return e.print(profile.Trainees)
	}
	return nil
}

func trainerAvailable(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	trainee := c.String("trainee")
	if trainee == "" {
		trainee = e.cfg.Username
	}
	if trainee == "" {
		return fmt.Errorf("--trainee required (or log in first)")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var list []trainerSummary
	q := url.Values{"traineeUsername": []string{trainee}}
	if err := e.client.Get(ctx, "/api/v1/trainers/available"+encodeQuery(q), &list); err != nil {
		return err
	}
	return e.print(list)
}

func trainerTrainings(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	username, err := e.usernameArg(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	q := trainingQuery(c)
	setIf(q, "traineeName", c.String("trainee"))

	var list []training
	path := "/api/v1/trainers/" + url.PathEscape(username) + "/trainings" + encodeQuery(q)
	if err := e.client.Get(ctx, path, &list); err != nil {
		return err
	}
	return e.print(list)
}
