package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/akashic/internal/render"
	"github.com/roach88/akashic/internal/timeline"
)

// FilterOptions holds the timeline filter flags shared by list and report.
type FilterOptions struct {
	Tags []string
	From string
	To   string
}

func (fo *FilterOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&fo.Tags, "tag", "t", nil, "only slices carrying this tag (repeatable)")
	cmd.Flags().StringVar(&fo.From, "from", "", "only slices starting at or after this time")
	cmd.Flags().StringVar(&fo.To, "to", "", "only slices starting before this time")
}

// filter converts the flags into a timeline.Filter in loc.
func (fo *FilterOptions) filter(loc *time.Location) (timeline.Filter, error) {
	f := timeline.Filter{Tags: splitTags(fo.Tags)}
	var err error
	if fo.From != "" {
		if f.From, err = ParseTime(fo.From, loc); err != nil {
			return f, err
		}
	}
	if fo.To != "" {
		if f.To, err = ParseTime(fo.To, loc); err != nil {
			return f, err
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, &InputError{Field: "range", Value: fo.From + " .. " + fo.To, Reason: "--from must be before --to"}
	}
	return f, nil
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	fo := &FilterOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List recorded time slices",
		Long: `List recorded time slices in chronological order.

Example:
  akashic list
  akashic list --tag code --from 2025-02-01 --to 2025-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			filter, err := fo.filter(sess.loc)
			if err != nil {
				return err
			}
			tl, err := sess.timer.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Emit(newListView(tl, sess.loc), func(w io.Writer) error {
				return render.Timeline(w, tl, sess.loc)
			})
		},
	}
	fo.register(cmd)

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one time slice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			return showSlice(cmd, opts, sess, id)
		},
	}
}

// showSlice re-reads a slice and prints it.
func showSlice(cmd *cobra.Command, opts *RootOptions, sess *session, id int64) error {
	tl, err := sess.timer.List(cmd.Context(), timeline.Filter{})
	if err != nil {
		return err
	}
	info, err := tl.GetTimeInfo(id)
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Emit(newSliceView(info, sess.loc), func(w io.Writer) error {
		return render.TimeInfo(w, info, sess.loc)
	})
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a time slice with its tags and description",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			if err := sess.timer.Remove(cmd.Context(), id); err != nil {
				return err
			}
			return opts.formatter(cmd).Emit(map[string]int64{"removed": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Removed slice %d.\n", id)
				return err
			})
		},
	}
}

// NewTagCommand creates the tag command.
func NewTagCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> [tags...]",
		Short: "Replace the tags of a time slice",
		Long: `Replace the tags of a time slice. With no tags, the slice is untagged.

Example:
  akashic tag 12 code review
  akashic tag 12 code,review`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			if err := sess.timer.UpdateTags(cmd.Context(), id, splitTags(args[1:])); err != nil {
				return err
			}
			return showSlice(cmd, opts, sess, id)
		},
	}
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <id> [text...]",
		Short: "Replace the description of a time slice",
		Long: `Replace the description of a time slice. With no text, the
description is removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if err := sess.timer.UpdateDescription(cmd.Context(), id, text); err != nil {
				return err
			}
			return showSlice(cmd, opts, sess, id)
		},
	}
}

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Start string
	End   string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the start or end of a time slice",
		Long: `Change the start or end of a time slice. Times are read in the
configured timezone.

Example:
  akashic edit 12 --start "2025-02-13 09:00"
  akashic edit 12 --end "2025-02-13 10:30:00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if opts.Start == "" && opts.End == "" {
				return &InputError{Field: "flags", Value: "", Reason: "need --start or --end"}
			}
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}

			var start, end time.Time
			if opts.Start != "" {
				if start, err = ParseTime(opts.Start, sess.loc); err != nil {
					return err
				}
			}
			if opts.End != "" {
				if end, err = ParseTime(opts.End, sess.loc); err != nil {
					return err
				}
			}
			if _, err := sess.timer.Retime(cmd.Context(), id, start, end); err != nil {
				return err
			}
			return showSlice(cmd, opts.RootOptions, sess, id)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "new start time")
	cmd.Flags().StringVar(&opts.End, "end", "", "new end time")

	return cmd
}
