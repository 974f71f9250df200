package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/testdeck/console/internal/core/auth"
	"github.com/testdeck/console/internal/infrastructure/graphql"
	"github.com/testdeck/console/pkg/logger"
)

// whoamiReport is what the whoami command prints.
type whoamiReport struct {
	Backend   string     `json:"backend"             yaml:"backend"`
	State     string     `json:"state"               yaml:"state"`
	Username  string     `json:"username,omitempty"  yaml:"username,omitempty"`
	Role      string     `json:"role,omitempty"      yaml:"role,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty" yaml:"lastLogin,omitempty"`
	Error     string     `json:"error,omitempty"     yaml:"error,omitempty"`
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "log in once and print the session the backend reports",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Usage: "GraphQL endpoint", EnvVars: []string{"BACKEND_GRAPHQL_URL"}, Value: "http://localhost:8080/query"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"CONSOLE_PASSWORD"}, Required: true},
			&cli.StringFlag{Name: "format", Aliases: []string{"o"}, Usage: "yaml or json", Value: "yaml"},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q", format)
			}

			log := logger.Init(logger.Options{Level: "warn", Pretty: true, Output: os.Stderr})
			backend, err := graphql.NewBackend(graphql.Config{
				Endpoint: c.String("backend"),
				Timeout:  c.Duration("timeout"),
			}, log)
			if err != nil {
				return err
			}
			client, err := backend.NewClient(nil)
			if err != nil {
				return err
			}

			sess := auth.NewSession(uuid.NewString(), auth.NewStore(), client, auth.WithSessionLogger(log))
			creds := auth.Credentials{Username: c.String("username"), Password: c.String("password")}
			loginErr := sess.Login(c.Context, creds)
			if loginErr == nil {
				// Confirms the backend accepts the cookie it just issued.
				sess.CheckStatus(c.Context)
			}

			report := newWhoamiReport(backend.Endpoint(), sess.State(), loginErr)
			if err := writeReport(c.App.Writer, format, report); err != nil {
				return err
			}
			if report.State != auth.Authenticated.String() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// newWhoamiReport describes st. loginErr fills Error when the store carries
// none, as with credentials rejected before reaching the backend.
func newWhoamiReport(endpoint string, st auth.State, loginErr error) whoamiReport {
	r := whoamiReport{
		Backend: endpoint,
		State:   st.Logical().String(),
		Error:   st.Error,
	}
	if r.Error == "" && loginErr != nil {
		r.Error = loginErr.Error()
	}
	if u := st.User; u != nil {
		r.Username = u.Username
		r.Role = u.Role
		r.LastLogin = u.LastLoginAt
	}
	return r
}

func writeReport(w io.Writer, format string, r whoamiReport) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
