package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jacentio/moviereview/review"
	"github.com/jacentio/moviereview/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Settings   Settings
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the moviereview CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	defaults := store.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "moviereview",
		Short: "Manage movie reviews keyed by title and author",
		Long: `Create, update, delete and inspect movie reviews.

A review is identified by its title and the author that wrote it. Only
the author that created a review can update or delete it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.ConfigPath != "" {
				file, err := LoadSettings(opts.ConfigPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "load settings", err)
				}
				opts.Settings.merge(file, cmd.Flags())
			}
			if !isValidBackend(opts.Settings.Backend) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid backend %q: must be one of %v", opts.Settings.Backend, ValidBackends))
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log diagnostics to stderr")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML settings file")
	flags.StringVar(&opts.Settings.Backend, "backend", "sqlite", "ledger backend (sqlite|dynamodb)")
	flags.StringVar(&opts.Settings.Author, "author", "", "author identity (64 hex characters)")
	flags.IntVar(&opts.Settings.LockStripes, "lock-stripes", 0, "number of key lock stripes (0 = default)")
	flags.StringVar(&opts.Settings.SQLite.Path, "db", "moviereview.db", "sqlite database path")
	flags.StringVar(&opts.Settings.DynamoDB.RecordTable, "record-table", defaults.RecordTable, "dynamodb record table")
	flags.StringVar(&opts.Settings.DynamoDB.AccountTable, "account-table", defaults.AccountTable, "dynamodb account table")
	flags.StringVar(&opts.Settings.DynamoDB.Region, "region", "", "AWS region")
	flags.StringVar(&opts.Settings.DynamoDB.Profile, "profile", "", "AWS shared config profile")
	flags.StringVar(&opts.Settings.DynamoDB.Endpoint, "endpoint", "", "dynamodb endpoint override")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewReservedCommand(opts))

	return cmd
}

// logger builds the diagnostic logger for a command.
// Review diagnostics are info level and only shown with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// author parses the --author identity.
func (o *RootOptions) author() (review.Author, error) {
	if o.Settings.Author == "" {
		return review.Author{}, WrapExitError(ExitCommandError, "missing author", fmt.Errorf("set --author or author in the config file"))
	}
	a, err := review.ParseAuthor(o.Settings.Author)
	if err != nil {
		return review.Author{}, WrapExitError(ExitCommandError, "invalid author", err)
	}
	if a.IsZero() {
		return review.Author{}, WrapExitError(ExitCommandError, "invalid author", fmt.Errorf("author must not be all zero bytes"))
	}
	return a, nil
}

// Execute runs cmd and returns the error whose exit code the process should
// use. Errors not already written by the output formatter are printed to
// stderr; usage errors from cobra (missing arguments or required flags)
// become command errors.
func Execute(cmd *cobra.Command) error {
	c, err := cmd.ExecuteC()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "invalid usage", err)
	}
	if !exitErr.Reported {
		fmt.Fprintf(c.ErrOrStderr(), "Error: %v\n", exitErr)
		exitErr.Reported = true
	}
	return exitErr
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
