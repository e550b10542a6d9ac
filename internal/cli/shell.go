package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/akashic/internal/render"
)

const shellPrompt = "akashic> "

// NewShellCommand creates the shell command.
func NewShellCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session (default)",
		Long: `Read commands line by line and run them against one timer.

Every command of the CLI is available, without the "akashic" prefix. A
failing command reports its error and the session continues. "exit",
"quit" or end of input leave the shell; a running timer is stopped and
saved first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *RootOptions) error {
	sess, err := opts.session(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := opts.writer(cmd)
	interactive := isTerminal(cmd.InOrStdin())
	prompt := func() {
		if interactive {
			fmt.Fprint(out, shellPrompt)
		}
	}

	parser := shellwords.NewParser()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for prompt(); scanner.Scan(); prompt() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		args, err := parser.Parse(line)
		if err != nil {
			_ = opts.formatter(cmd).Report(&InputError{Field: "command line", Value: line, Reason: err.Error()})
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			break
		}

		if err := runLine(ctx, cmd, opts, args); err != nil {
			_ = opts.formatter(cmd).Report(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitFailure, "failed to read input", err)
	}

	return saveOnExit(ctx, cmd, opts, sess)
}

// runLine executes one shell line on a fresh command tree that shares the
// session. Flags given on the line apply to that line only.
func runLine(ctx context.Context, cmd *cobra.Command, opts *RootOptions, args []string) error {
	lineOpts := *opts
	lineOpts.inShell = true

	sub := newRootCommand(&lineOpts)
	sub.SetArgs(args)
	sub.SetIn(cmd.InOrStdin())
	sub.SetOut(opts.writer(cmd))
	sub.SetErr(cmd.ErrOrStderr())
	return sub.ExecuteContext(ctx)
}

// saveOnExit stops and saves a timer left running when the shell ends.
func saveOnExit(ctx context.Context, cmd *cobra.Command, opts *RootOptions, sess *session) error {
	if !sess.timer.Running() {
		return nil
	}
	snap, err := sess.timer.Stop(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to save running timer", err)
	}
	return opts.formatter(cmd).Emit(newTimerView(snap, sess.loc), func(w io.Writer) error {
		if _, err := io.WriteString(w, "Saved running timer.\n"); err != nil {
			return err
		}
		return render.Status(w, snap, sess.loc)
	})
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
