package command

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gymdesk-go/internal/cli/output"
)

// TraineeCommand returns the trainee subcommand group.
func TraineeCommand() *cli.Command {
	return &cli.Command{
		Name:  "trainee",
		Usage: "Manage trainees",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a trainee and print the generated credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name", Required: true},
					&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: true},
					&cli.StringFlag{Name: "dob", Usage: "Date of birth (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "address", Usage: "Address"},
				},
				Action: traineeRegister,
			},
			{
				Name:      "get",
				Usage:     "Show a trainee profile",
				ArgsUsage: "[USERNAME]",
				Action:    traineeGet,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a trainee and their trainings",
				ArgsUsage: "USERNAME",
				Action:    traineeDelete,
			},
			{
				Name:      "trainings",
				Usage:     "List a trainee's trainings",
				ArgsUsage: "[USERNAME]",
				Flags: append(trainingFilterFlags(),
					&cli.StringFlag{Name: "trainer", Usage: "Filter by trainer name"},
					&cli.StringFlag{Name: "type", Usage: "Filter by training type"},
				),
				Action: traineeTrainings,
			},
		},
	}
}

func traineeRegister(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]any{
		"firstName": c.String("first-name"),
		"lastName":  c.String("last-name"),
		"address":   c.String("address"),
	}
	if dob := c.String("dob"); dob != "" {
		body["dateOfBirth"] = dob
	}

	var creds credentials
	if err := e.client.Post(ctx, "/api/v1/trainees", body, &creds); err != nil {
		return err
	}
	return e.print(creds)
}

func traineeGet(c *cli.Context) error {
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

	var profile traineeProfile
	if err := e.client.Get(ctx, "/api/v1/trainees/"+url.PathEscape(username), &profile); err != nil {
		return err
	}
	if err := e.print(profile); err != nil {
		return err
	}
	if e.format == output.FormatTable && len(profile.Trainers) > 0 {
		fmt.Fprintln(e.out, "\nTrainers:")
		return e.print(profile.Trainers)
	}
	return nil
}

func traineeDelete(c *cli.Context) error {
	username := c.Args().First()
	if username == "" {
		return fmt.Errorf("USERNAME required")
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := e.client.Delete(ctx, "/api/v1/trainees/"+url.PathEscape(username)); err != nil {
		return err
	}
	e.printf("Trainee %s deleted\n", username)
	return nil
}

func traineeTrainings(c *cli.Context) error {
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
	setIf(q, "trainerName", c.String("trainer"))
	setIf(q, "trainingType", c.String("type"))

	var list []training
	path := "/api/v1/trainees/" + url.PathEscape(username) + "/trainings" + encodeQuery(q)
	if err := e.client.Get(ctx, path, &list); err != nil {
		return err
	}
	return e.print(list)
}

// trainingFilterFlags are the date range flags shared by both listings.
func trainingFilterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "Earliest date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Usage: "Latest date (YYYY-MM-DD)"},
	}
}

func trainingQuery(c *cli.Context) url.Values {
	q := url.Values{}
	setIf(q, "from", c.String("from"))
	setIf(q, "to", c.String("to"))
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func encodeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
