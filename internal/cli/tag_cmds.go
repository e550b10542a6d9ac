package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/akashic/internal/render"
	"github.com/roach88/akashic/internal/store"
)

// NewTagsCommand creates the tags command.
func NewTagsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List registered tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			tags, err := sess.store.AllTags(cmd.Context())
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Emit(newTagViews(tags), func(w io.Writer) error {
				return render.Tags(w, tags)
			})
		},
	}
}

// NewTagColorCommand creates the tag-color command.
func NewTagColorCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tag-color <tag> [color]",
		Short: "Set the display color of a tag",
		Long: `Set the display color of a tag, creating the tag if needed. With no
color, the hint is cleared.

Example:
  akashic tag-color code "#3b82f6"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := ""
			if len(args) == 2 {
				color = args[1]
			}
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			tag, err := sess.store.SetTagColor(cmd.Context(), args[0], color)
			if err != nil {
				return err
			}
			tags := []store.Tag{tag}
			return opts.formatter(cmd).Emit(newTagViews(tags), func(w io.Writer) error {
				return render.Tags(w, tags)
			})
		},
	}
}
