// Package report persists sweep reports and renders them for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bitrate-lab/pkg/models"
)

// FileName is the report name inside a report directory.
const FileName = "report.json"

// WriteJSON writes r to path, creating parent directories.
func WriteJSON(r *models.Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r models.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// Table renders a series as a rounded table in ladder order.
func Table(s models.Series) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s sweep", s.Kind))

	measured := false
	for _, p := range s.Points {
		if p.MeasuredKbps > 0 {
			measured = true
			break
		}
	}

	header := table.Row{"Bitrate", "Size (MB)", "Size", "Quality (%)"}
	if measured {
		header = append(header, "Measured")
	}
	tw.AppendHeader(header)

	for _, p := range s.Points {
		row := table.Row{
			strconv.Itoa(p.Kbps) + "k",
			strconv.FormatFloat(p.SizeMB, 'f', 2, 64),
			humanize.IBytes(uint64(p.SizeMB * 1024 * 1024)),
			strconv.FormatFloat(p.Quality, 'f', 0, 64),
		}
		if measured {
			row = append(row, strconv.FormatFloat(p.MeasuredKbps, 'f', 0, 64)+"k")
		}
		tw.AppendRow(row)
	}

	configs := []table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	}
	if measured {
		configs = append(configs, table.ColumnConfig{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// Summary renders every series present in r.
func Summary(r *models.Report) string {
	out := ""
	for _, s := range []*models.Series{r.Video, r.Audio} {
		if s == nil {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += Table(*s) + "\n"
	}
	return out
}
