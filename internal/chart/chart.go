// Package chart renders the size and quality curves of a sweep.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bitrate-lab/pkg/models"
)

var ErrEmptySeries = errors.New("chart: series has no points")

const (
	figureWidth  = 12 * vg.Inch
	figureHeight = 6 * vg.Inch
)

var (
	sizeColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	qualityColor = color.RGBA{R: 255, A: 255}
)

// FileName returns the conventional chart name for a media kind.
func FileName(kind models.MediaKind) string {
	return fmt.Sprintf("%s_quality_analysis.pdf", kind)
}

// Render draws size-vs-bitrate and quality-vs-bitrate side by side and
// writes the figure to path. The output format follows the extension
// (pdf, svg, png, ...).
func Render(series models.Series, path string) error {
	if len(series.Points) == 0 {
		return ErrEmptySeries
	}

	sizePlot, err := newPanel(
		"File Size vs Bitrate", "File Size (MB)",
		series.Bitrates(), series.Sizes(), sizeColor,
	)
	if err != nil {
		return err
	}
	qualityPlot, err := newPanel(
		fmt.Sprintf("Subjective %s Quality vs Bitrate", kindTitle(series.Kind)), "Subjective Quality (%)",
		series.Bitrates(), series.Qualities(), qualityColor,
	)
	if err != nil {
		return err
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "pdf"
	}
	canvas, err := draw.NewFormattedCanvas(figureWidth, figureHeight, format)
	if err != nil {
		return fmt.Errorf("chart canvas: %w", err)
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Centimeter,
		PadTop:    vg.Millimeter * 5,
		PadBottom: vg.Millimeter * 5,
		PadLeft:   vg.Millimeter * 5,
		PadRight:  vg.Millimeter * 5,
	}
	plots := [][]*plot.Plot{{sizePlot, qualityPlot}}
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	sizePlot.Draw(canvases[0][0])
	qualityPlot.Draw(canvases[0][1])

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}

func newPanel(title, yLabel string, xs []int, ys []float64, c color.Color) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("chart %q: %d x values, %d y values", title, len(xs), len(ys))
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Bitrate (kbps)"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = float64(xs[i])
		pts[i].Y = ys[i]
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", title, err)
	}
	line.Color = c
	points.Shape = draw.CircleGlyph{}
	points.Color = c
	points.Radius = vg.Points(3)
	p.Add(line, points)
	return p, nil
}

func kindTitle(kind models.MediaKind) string {
	switch kind {
	case models.MediaAudio:
		return "Audio"
	default:
		return "Video"
	}
}
