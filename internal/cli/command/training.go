package command

import (
	"github.com/urfave/cli/v2"
)

// TrainingCommand returns the training subcommand group.
func TrainingCommand() *cli.Command {
	return &cli.Command{
		Name:  "training",
		Usage: "Schedule trainings",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Record a training between a trainee and a trainer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "trainee", Usage: "Trainee username", Required: true},
					&cli.StringFlag{Name: "trainer", Usage: "Trainer username", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Training name", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Date (YYYY-MM-DD)", Required: true},
					&cli.IntFlag{Name: "duration", Usage: "Duration in minutes", Required: true},
				},
				Action: trainingCreate,
			},
		},
	}
}

// TypesCommand returns the types command.
func TypesCommand() *cli.Command {
	return &cli.Command{
		Name:   "types",
		Usage:  "List training types",
		Action: listTypes,
	}
}

func trainingCreate(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]any{
		"traineeUsername": c.String("trainee"),
		"trainerUsername": c.String("trainer"),
		"name":            c.String("name"),
		"date":            c.String("date"),
		"duration":        c.Int("duration"),
	}
	var created training
	if err := e.client.Post(ctx, "/api/v1/trainings", body, &created); err != nil {
		return err
	}
	return e.print(created)
}

func listTypes(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var types []trainingType
	if err := e.client.Get(ctx, "/api/v1/training-types", &types); err != nil {
		return err
	}
	return e.print(types)
}
