package command

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gymdesk-go/internal/cli/config"
	"github.com/yndnr/gymdesk-go/internal/cli/connection"
	"github.com/yndnr/gymdesk-go/internal/cli/output"
	"github.com/yndnr/gymdesk-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gymdesk-cli",
		Usage:   "gymdesk command-line client",
		Version: buildinfo.Get().Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			TraineeCommand(),
			TrainerCommand(),
			TrainingCommand(),
			TypesCommand(),
			VersionCommand(),
		},
		HideVersion: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"GYMDESK_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "gymdesk server URL (e.g., http://127.0.0.1:8080)",
			EnvVars: []string{"GYMDESK_SERVER"},
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "session token (defaults to the one saved by login)",
			EnvVars: []string{"GYMDESK_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// env is everything a command needs for one invocation.
type env struct {
	cfg     *config.CLIConfig
	cfgPath string
	client  *connection.HTTPClient
	format  output.Format
	wide    bool
	out     io.Writer
}

// newEnv merges the config file with flags. Flags win.
func newEnv(c *cli.Context) (*env, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	server := cfg.Server
	if s := c.String("server"); s != "" {
		server = s
	}
	token := cfg.Token
	if t := c.String("token"); t != "" {
		token = t
	}
	formatName := cfg.Output
	if o := c.String("output"); o != "" {
		formatName = o
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:     cfg,
		cfgPath: path,
		client:  connection.NewHTTPClient(server, token),
		format:  format,
		wide:    c.Bool("wide"),
		out:     c.App.Writer,
	}, nil
}

// print renders data in the selected format.
func (e *env) print(data any) error {
	return output.NewFormatter(e.format, e.wide).Format(e.out, data)
}

// printf writes a human message. Structured formats stay machine-readable,
// so messages are only shown for table output.
func (e *env) printf(format string, args ...any) {
	if e.format == output.FormatTable {
		fmt.Fprintf(e.out, format, args...)
	}
}

// save persists the config file.
func (e *env) save() error {
	return config.Save(e.cfg, e.cfgPath)
}

// requestContext bounds one server call.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, connection.DefaultTimeout)
}

// usernameArg returns the first argument, or the logged-in user.
func (e *env) usernameArg(c *cli.Context) (string, error) {
	if u := c.Args().First(); u != "" {
		return u, nil
	}
	if e.cfg.Username != "" {
		return e.cfg.Username, nil
	}
	return "", fmt.Errorf("USERNAME required (or log in first)")
}
