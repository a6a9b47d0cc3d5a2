// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws bar charts of generated tables.
package chart

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/acebench/benchtab/tabgen"
)

// Rates returns a bar chart of the effective rate of every row of t.
// Each group is drawn in its own color, and bars are labeled
// "group/variant". Rows without a rate are drawn as zero.
func Rates(t *tabgen.Table, title string) (*plot.Plot, error) {
	if t.Kind != tabgen.Timing {
		return nil, fmt.Errorf("%v table has no rates", t.Kind)
	}
	pl := newPlot(title, "effective rate")

	w := vg.Points(10)
	var nominalX []string
	for i, g := range t.Groups {
		if len(g.Rows) == 0 {
			continue
		}
		values := make(plotter.Values, len(g.Rows))
		for j, r := range g.Rows {
			if r.HasRate && !math.IsInf(r.Rate, 0) {
				values[j] = r.Rate
			}
			nominalX = append(nominalX, g.Name+"/"+r.Label)
		}
		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		bars.XMin = float64(len(nominalX) - len(g.Rows))
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		pl.Add(bars)
		pl.Legend.Add(g.Name, bars)
	}
	if len(nominalX) == 0 {
		return nil, fmt.Errorf("no rows to chart")
	}
	labelBars(pl, nominalX)
	return pl, nil
}

// Sizes returns a bar chart of the flash and RAM sizes of every row
// of the memory table t. The two sizes of a row are drawn side by side
// and bars are labeled "group/variant".
func Sizes(t *tabgen.Table, title string) (*plot.Plot, error) {
	if t.Kind != tabgen.Memory {
		return nil, fmt.Errorf("%v table has no memory sizes", t.Kind)
	}
	pl := newPlot(title, "bytes")

	var flash, ram plotter.Values
	var nominalX []string
	for _, g := range t.Groups {
		for _, r := range g.Rows {
			flash = append(flash, float64(r.Flash))
			ram = append(ram, float64(r.RAM))
			nominalX = append(nominalX, g.Name+"/"+r.Label)
		}
	}
	if len(nominalX) == 0 {
		return nil, fmt.Errorf("no rows to chart")
	}

	w := vg.Points(8)
	for i, s := range []struct {
		name   string
		values plotter.Values
	}{
		{"flash", flash},
		{"ram", ram},
	} {
		bars, err := plotter.NewBarChart(s.values, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(2*i-1) * w / 2
		pl.Add(bars)
		pl.Legend.Add(s.name, bars)
	}
	labelBars(pl, nominalX)
	return pl, nil
}

func newPlot(title, yLabel string) *plot.Plot {
	pl := plot.New()
	pl.Title.Text = title
	pl.Y.Label.Text = yLabel
	pl.Y.Min = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)
	return pl
}

// labelBars labels the bars of pl with names, slanted so long
// variant labels do not overlap.
func labelBars(pl *plot.Plot, names []string) {
	pl.NominalX(names...)
	pl.Legend.Top = true

	pl.X.Tick.Label.Rotation = -math.Pi / 8
	pl.X.Tick.Label.YAlign = draw.YTop
	pl.X.Tick.Label.XAlign = draw.XLeft
}

// Save writes pl to w in format, which is one of "svg", "png", "pdf",
// or any other format supported by plot.Plot.WriterTo. The size of
// the image grows with the number of bars.
func Save(pl *plot.Plot, w io.Writer, format string) error {
	bars := pl.X.Max - pl.X.Min + 1
	width := vg.Length(1.5*(2+bars)) * vg.Centimeter
	if width < 12*vg.Centimeter {
		width = 12 * vg.Centimeter
	}
	height := 10 * vg.Centimeter

	wt, err := pl.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
