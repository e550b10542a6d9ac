package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/akashic/internal/clock"
	"github.com/roach88/akashic/internal/timer"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides config database
	ConfigPath string // overrides ~/.akashic/config.yaml

	// Clock overrides the system clock (for testing).
	Clock clock.Clock

	// Tokens overrides the timer token generator (for testing).
	Tokens timer.TokenGenerator

	inShell bool
	state   *state
}

// NewRootOptions returns options with fresh per-process state.
func NewRootOptions() *RootOptions {
	return &RootOptions{Format: "text", state: &state{}}
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the akashic CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewRootOptions())
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.state == nil {
		opts.state = &state{}
	}

	cmd := &cobra.Command{
		Use:   "akashic",
		Short: "akashic - a personal time tracker",
		Long: `akashic records what you spend your time on.

Start a timer, optionally with a maximum duration, tags and a description;
stop it and the interval is saved to a local SQLite ledger. Run without a
command to enter the interactive shell, where a running timer survives
between commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return &InputError{Field: "format", Value: opts.Format, Reason: fmt.Sprintf("must be one of %v", ValidFormats)}
			}
			if !opts.inShell && !cmd.Flags().Changed("format") {
				// Fall back to the configured default; a broken config is
				// reported by the commands that need it. Shell lines inherit
				// the format the shell was started with.
				if cfg, err := opts.loadConfig(); err == nil {
					opts.Format = cfg.Format
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.inShell {
				return nil
			}
			return opts.Close()
		},
	}
	if !opts.inShell {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		}
		cmd.Args = cobra.NoArgs
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", opts.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", opts.Database, "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "path to config file (default ~/.akashic/config.yaml)")

	// Add subcommands
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewStopCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewTagColorCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	if !opts.inShell {
		cmd.AddCommand(NewShellCommand(opts))
	}

	return cmd
}

// Execute runs the CLI and returns the process exit code.
// Errors are reported on out in the selected format.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	return execute(ctx, NewRootOptions(), args, in, out, errOut)
}

func execute(ctx context.Context, opts *RootOptions, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = opts.formatter(cmd).Report(err)
		return GetExitCode(err)
	}
	return ExitSuccess
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
