package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/akashic/internal/render"
	"github.com/roach88/akashic/internal/timer"
)

// StartOptions holds flags for the start command.
type StartOptions struct {
	*RootOptions
	Tags []string
}

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "start [duration] [description...]",
		Aliases: []string{"s"},
		Short:   "Start the timer",
		Long: `Start the timer.

An optional leading duration arms a watchdog that stops and saves the timer
once it elapses: a bare number is seconds, "90s" is seconds, "25m" is
minutes. The remaining words form the description. Tags are given with
--tag, repeated or comma separated.

Inside the shell the command returns immediately. Run directly, it tracks
in the foreground until the duration elapses or you press Ctrl-C.

Example:
  akashic start 25m write the report -t writing
  akashic start -t code,review`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Tags, "tag", "t", nil, "tag to attach (repeatable, comma separated)")

	return cmd
}

func runStart(cmd *cobra.Command, opts *StartOptions, args []string) error {
	duration, description, err := splitStartArgs(args)
	if err != nil {
		return err
	}

	sess, err := opts.session(cmd)
	if err != nil {
		return err
	}
	f := opts.formatter(cmd)

	snap, err := sess.timer.Start(cmd.Context(), timer.StartOptions{
		Duration:    duration,
		Tags:        splitTags(opts.Tags),
		Description: description,
	})
	if err != nil {
		return err
	}

	if err := emitTimer(f, snap, sess); err != nil {
		return err
	}
	if opts.inShell {
		return nil
	}
	return runForeground(cmd, sess, f)
}

// runForeground blocks until the watchdog stops the timer or the process is
// interrupted, in which case the timer is stopped and saved.
func runForeground(cmd *cobra.Command, sess *session, f *OutputFormatter) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.Format != "json" {
		fmt.Fprintln(f.GetErrWriter(), "Tracking. Press Ctrl-C to stop.")
	}

	select {
	case <-sess.autoStopped:
		// The auto-stop hook already reported the final state.
		return nil
	case <-ctx.Done():
	}

	snap, err := sess.timer.Stop(context.WithoutCancel(ctx))
	if timer.IsNotRunning(err) {
		// The watchdog won the race; wait for its report.
		<-sess.autoStopped
		return nil
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to save timer", err)
	}
	return emitTimer(f, snap, sess)
}

// NewStopCommand creates the stop command.
func NewStopCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Aliases: []string{"t"},
		Short:   "Stop the running timer and save it",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			snap, err := sess.timer.Stop(cmd.Context())
			if err != nil {
				return err
			}
			return emitTimer(opts.formatter(cmd), snap, sess)
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"current", "c"},
		Short:   "Show the running timer",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			snap, err := sess.timer.Status()
			if err != nil {
				return err
			}
			return emitTimer(opts.formatter(cmd), snap, sess)
		},
	}
}

func emitTimer(f *OutputFormatter, snap timer.Snapshot, sess *session) error {
	return f.Emit(newTimerView(snap, sess.loc), func(w io.Writer) error {
		return render.Status(w, snap, sess.loc)
	})
}
