package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/akashic/internal/render"
	"github.com/roach88/akashic/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	FilterOptions
	GroupBy string
	PDF     string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize tracked time",
		Long: `Summarize tracked time with subtotals per day or ISO week and
totals per tag. With --pdf the report is also written as a PDF file.

Example:
  akashic report --group-by week
  akashic report --from 2025-02-01 --to 2025-03-01 --pdf february.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	opts.FilterOptions.register(cmd)
	cmd.Flags().StringVar(&opts.GroupBy, "group-by", "", "grouping: none, day or week (default from config)")
	cmd.Flags().StringVar(&opts.PDF, "pdf", "", "also write the report to this PDF file")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	sess, err := opts.session(cmd)
	if err != nil {
		return err
	}

	groupBy := opts.GroupBy
	if groupBy == "" {
		groupBy = sess.cfg.Report.GroupBy
	}
	by, err := report.ParseGroupBy(groupBy)
	if err != nil {
		return &InputError{Field: "group-by", Value: groupBy, Reason: "must be none, day or week"}
	}

	filter, err := opts.filter(sess.loc)
	if err != nil {
		return err
	}
	tl, err := sess.timer.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	r := report.Build(tl, by, sess.loc)

	if opts.PDF != "" {
		if err := report.WritePDF(opts.PDF, r); err != nil {
			return WrapExitError(ExitFailure, "failed to write PDF", err)
		}
		sess.logger.Info("pdf report written", "path", opts.PDF)
	}

	return opts.formatter(cmd).Emit(newReportView(r, sess.loc), func(w io.Writer) error {
		if err := render.Report(w, r); err != nil {
			return err
		}
		if opts.PDF != "" {
			_, err := fmt.Fprintf(w, "\nWrote %s\n", opts.PDF)
			return err
		}
		return nil
	})
}
