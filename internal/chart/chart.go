// Package chart renders page time series to PNG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aoedash/internal/logging"
	"aoedash/internal/pages"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data points to chart")

// Options sizes and labels a chart.
type Options struct {
	Title  string
	YName  string
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 500
	}
	if o.YName == "" {
		o.YName = "Civ Win (%)"
	}
	return o
}

// lineStyle draws a line with point markers.
func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    4,
	}
}

// RenderPNG writes a line chart of points to w.
func RenderPNG(w io.Writer, points []pages.Point, opts Options) error {
	if len(points) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Date
		ys[i] = p.Value
	}
	// go-chart needs at least two X values to compute a range.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		XAxis: gochart.XAxis{
			Name:           "Match Date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: gochart.YAxis{
			Name:  opts.YName,
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Win %",
				XValues: xs,
				YValues: ys,
				Style:   lineStyle(gochart.ColorBlue),
			},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// WriteFile renders the chart into path, creating parent directories.
func WriteFile(path string, points []pages.Point, opts Options) error {
	timer := logging.StartTimer(logging.CategoryChart, "chart export")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := RenderPNG(f, points, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Get(logging.CategoryChart).Infof("wrote %d point(s) to %s", len(points), path)
	return nil
}

// FileName builds a stable file name from the selected filter values, e.g.
// "civ-performance_franks_arabia_1000-1200.png".
func FileName(prefix string, parts ...string) string {
	name := prefix
	for _, p := range parts {
		if p == "" {
			continue
		}
		name += "_" + sanitize(p)
	}
	return name + ".png"
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
