package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bitrate-lab/internal/chart"
	"bitrate-lab/internal/report"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:         "report",
		Short:       "Inspect and re-chart saved sweep reports",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	reportCmd.AddCommand(&cobra.Command{
		Use:   "show <report.json>",
		Short: "Print the size and quality tables of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.ReadJSON(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sweep %s of %s (%s)\n", rep.ID, rep.Input, rep.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprint(cmd.OutOrStdout(), report.Summary(rep))
			return nil
		},
	})

	var kind string
	chartCmd := &cobra.Command{
		Use:   "chart <report.json> <output>",
		Short: "Redraw the chart of one series of a report (pdf, svg, or png by extension)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.ReadJSON(args[0])
			if err != nil {
				return err
			}
			series := rep.Video
			if kind == "audio" {
				series = rep.Audio
			} else if kind != "video" {
				return fmt.Errorf("--kind must be video or audio, got %q", kind)
			}
			if series == nil {
				return fmt.Errorf("report has no %s series", kind)
			}
			if err := chart.Render(*series, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
			return nil
		},
	}
	chartCmd.Flags().StringVar(&kind, "kind", "video", "Series to chart: video or audio")
	reportCmd.AddCommand(chartCmd)

	return reportCmd
}
