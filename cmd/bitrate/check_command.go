package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bitrate-lab/internal/deps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that ffmpeg and ffprobe are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.SweepRequirements(cfg.FFmpeg.Binary))
			fmt.Fprintln(cmd.OutOrStdout(), renderStatuses(statuses))
			return deps.FirstMissing(statuses)
		},
	}
}

func renderStatuses(statuses []deps.Status) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Dependency", "Status", "Path / Detail", "Used for"})
	for _, s := range statuses {
		state := "ok"
		where := s.Path
		if !s.Available {
			state = "missing"
			if s.Optional {
				state = "missing (optional)"
			}
			where = s.Detail
		}
		tw.AppendRow(table.Row{s.Name, state, where, s.Description})
	}
	return tw.Render()
}
