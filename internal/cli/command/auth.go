package command

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/gymdesk-go/internal/cli/connection"
	"github.com/yndnr/gymdesk-go/internal/cli/output"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and save the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "Username",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (read from stdin when omitted)",
				EnvVars: []string{"GYMDESK_PASSWORD"},
			},
		},
		Action: login,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Revoke the saved session token",
		Action: logout,
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the user the current token belongs to",
		Action: whoami,
	}
}

func login(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	password := c.String("password")
	if password == "" {
		fmt.Fprint(c.App.ErrWriter, "Password: ")
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var resp struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expiresAt,omitempty"`
	}
	body := map[string]string{"username": c.String("username"), "password": password}
	if err := e.client.Post(ctx, "/api/v1/auth/login", body, &resp); err != nil {
		return err
	}

	e.cfg.Server = e.client.BaseURL()
	e.cfg.Token = resp.Token
	e.cfg.Username = c.String("username")
	if err := e.save(); err != nil {
		return err
	}

	if e.format != output.FormatTable {
		return e.print(resp)
	}
	e.printf("Logged in as %s\n", e.cfg.Username)
	return nil
}

func logout(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	if e.client.Token() == "" {
		return errors.New("not logged in")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := e.client.Post(ctx, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}

	if e.cfg.Token == e.client.Token() {
		e.cfg.Token = ""
		e.cfg.Username = ""
		if err := e.save(); err != nil {
			return err
		}
	}
	e.printf("Logged out\n")
	return nil
}

func whoami(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var resp struct {
		Valid    bool    `json:"valid"`
		Username *string `json:"username"`
	}
	if err := e.client.Get(ctx, "/api/v1/auth/validate", &resp); err != nil {
		if connection.IsUnauthorized(err) {
			return errors.New("not logged in or session expired")
		}
		return err
	}
	if e.format != output.FormatTable {
		return e.print(resp)
	}
	if resp.Username != nil {
		fmt.Fprintln(e.out, *resp.Username)
	}
	return nil
}
