// Package cli is the gophtasks command line. Every command shares the
// client options and the persisted session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/atinyakov/GophTasks/internal/client"
	"github.com/atinyakov/GophTasks/internal/client/session"
	"github.com/atinyakov/GophTasks/internal/config"
	"github.com/atinyakov/GophTasks/internal/logger"
)

// ExpiredNotice is printed when the service rejects the stored token.
const ExpiredNotice = "session expired, sign in again"

var errNotSignedIn = errors.New("not signed in, run `gophtasks signin` first")

// Streams are the standard streams a command talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type app struct {
	streams   Streams
	version   string
	buildDate string

	opts   *config.ClientOptions
	log    *logger.Logger
	prompt *prompter
	client *client.Client
}

// NewRootCmd builds the command tree.
func NewRootCmd(streams Streams, version, buildDate string) *cobra.Command {
	a := &app{
		streams:   streams,
		version:   version,
		buildDate: buildDate,
		log:       logger.New(),
		prompt:    newPrompter(streams.In, streams.Err),
	}

	root := &cobra.Command{
		Use:           "gophtasks",
		Short:         "GophTasks - personal task tracking from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterClientFlags(root.PersistentFlags())
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		opts, err := config.LoadClient(root.PersistentFlags())
		if err != nil {
			return err
		}
		a.opts = opts
		return a.log.Init(opts.LogLevel)
	}

	root.AddCommand(
		a.signUpCmd(),
		a.signInCmd(),
		a.signOutCmd(),
		a.whoAmICmd(),
		a.strengthCmd(),
		a.listCmd(),
		a.showCmd(),
		a.createCmd(),
		a.statusCmd(),
		a.deleteCmd(),
		a.browseCmd(),
		a.versionCmd(),
	)
	return root
}

// Execute runs the command line against the process streams. Cancelling
// ctx aborts in-flight requests.
func Execute(ctx context.Context, version, buildDate string) error {
	root := NewRootCmd(Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, version, buildDate)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// core assembles the client on first use.
func (a *app) core() (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	path := a.opts.TokenFile
	if path == "" {
		var err error
		if path, err = session.DefaultFilePath(); err != nil {
			return nil, err
		}
	}

	c, err := client.New(client.Config{
		BaseURL:        a.opts.BaseURL,
		Store:          session.NewFileStore(path),
		CAFile:         a.opts.CAFile,
		Timeout:        a.opts.Timeout,
		SearchDebounce: a.opts.SearchDebounce,
		OnUnauthorized: func() { fmt.Fprintln(a.streams.Err, ExpiredNotice) },
		Logger:         a.log.Log,
	})
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// signedIn returns the client when a session is held.
func (a *app) signedIn() (*client.Client, error) {
	c, err := a.core()
	if err != nil {
		return nil, err
	}
	if !c.Session.IsAuthenticated() {
		return nil, errNotSignedIn
	}
	return c, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "GophTasks client\nVersion: %s\nBuild Date: %s\n",
				orNA(a.version), orNA(a.buildDate))
			return nil
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
