// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"context"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	plotWidth  = 1024
	plotHeight = 512
	barWidth   = 40
)

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// HistogramSeries converts a sample -> x -> count histogram into one series
// per sample, sorted by sample name, with points in ascending x.
func HistogramSeries(h map[string]map[int]int64) []Series {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	series := make([]Series, 0, len(names))
	for _, name := range names {
		xs := make([]int, 0, len(h[name]))
		for x := range h[name] {
			xs = append(xs, x)
		}
		sort.Ints(xs)
		s := Series{Name: name, X: make([]float64, len(xs)), Y: make([]float64, len(xs))}
		for i, x := range xs {
			s.X[i] = float64(x)
			s.Y[i] = float64(h[name][x])
		}
		series = append(series, s)
	}
	return series
}

func lineChart(cfg LineConfig, series []Series) *chart.Chart {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMax := cfg.YMin
	chartSeries := make([]chart.Series, 0, len(series))
	for i, s := range series {
		for j := range s.X {
			xMin = math.Min(xMin, s.X[j])
			xMax = math.Max(xMax, s.X[j])
			yMax = math.Max(yMax, s.Y[j])
		}
		color := chart.GetDefaultColor(i)
		chartSeries = append(chartSeries, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style:   chart.Style{StrokeColor: color, DotColor: color},
		})
	}
	// go-chart rejects empty ranges, e.g. a histogram with a single length.
	if xMax <= xMin {
		xMin, xMax = xMin-1, xMax+1
	}
	if yMax <= cfg.YMin {
		yMax = cfg.YMin + 1
	}
	xAxis := chart.XAxis{
		Name:  cfg.XLabel,
		Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
	}
	if !cfg.XDecimals {
		xAxis.ValueFormatter = chart.IntValueFormatter
	}
	graph := &chart.Chart{
		Title:  cfg.Title,
		Width:  plotWidth,
		Height: plotHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: xAxis,
		YAxis: chart.YAxis{
			Name:  cfg.YLabel,
			Range: &chart.ContinuousRange{Min: cfg.YMin, Max: yMax},
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

func stackedBarChart(cfg BarConfig, keys []BarKey, t Table) *chart.StackedBarChart {
	samples := t.Samples()
	bars := make([]chart.StackedBar, 0, len(samples))
	for _, name := range samples {
		values := make([]chart.Value, 0, len(keys))
		for _, k := range keys {
			color := drawing.ColorFromHex(strings.TrimPrefix(k.Color, "#"))
			values = append(values, chart.Value{
				Label: k.Name,
				Value: t[name][k.Key],
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
		}
		bars = append(bars, chart.StackedBar{Name: name, Width: barWidth, Values: values})
	}
	width := plotWidth
	if w := 2 * barWidth * (len(bars) + 2); w > width {
		width = w
	}
	return &chart.StackedBarChart{
		Title:  cfg.Title,
		Width:  width,
		Height: plotHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Bars:     bars,
		Elements: []chart.Renderable{barLegend(cfg.YLabel, keys)},
	}
}

// barLegend draws the y label at the top left of the plot area and one
// swatch per key at the top right, bottom key last.
func barLegend(yLabel string, keys []BarKey) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		const swatch, gap = 10, 6
		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(10)
		y := canvas.Top - gap
		if yLabel != "" {
			r.Text(yLabel, canvas.Left, y)
		}
		x := canvas.Right
		for i := len(keys) - 1; i >= 0; i-- {
			k := keys[i]
			x -= r.MeasureText(k.Name).Width()
			r.Text(k.Name, x, y)
			x -= gap + swatch
			color := drawing.ColorFromHex(strings.TrimPrefix(k.Color, "#"))
			r.SetFillColor(color)
			r.SetStrokeColor(color)
			r.MoveTo(x, y-swatch)
			r.LineTo(x+swatch, y-swatch)
			r.LineTo(x+swatch, y)
			r.LineTo(x, y)
			r.Close()
			r.FillStroke()
			x -= 2 * gap
		}
	}
}

// render draws r and writes it to <id>.<PlotFormat> under OutDir.
func (d *Dir) render(ctx context.Context, id string, r renderer) (err error) {
	provider := chart.PNG
	if d.opts.PlotFormat == "svg" {
		provider = chart.SVG
	}
	var buf bytes.Buffer
	if err = r.Render(provider, &buf); err != nil {
		return errors.E(err, "render", id)
	}
	out, err := file.Create(ctx, file.Join(d.opts.OutDir, id+"."+d.opts.PlotFormat))
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = buf.WriteTo(out.Writer(ctx))
	return err
}
