// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabgen

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/acebench/benchtab/benchunit"
	"github.com/acebench/benchtab/internal/texttab"
)

// Cells returns the rendered cells of r, one per column of t.
func (t *Table) Cells(r *Row) []string {
	cells := make([]string, len(t.Columns))
	timing := func(v float64) string {
		if math.IsNaN(v) {
			return t.na()
		}
		return benchunit.Format(v, t.cfg.Decimals.Timing)
	}
	for i, col := range t.Columns {
		switch col {
		case ColLabel:
			cells[i] = r.Label
		case ColSamples:
			cells[i] = strconv.Itoa(r.Samples)
		case ColMin:
			cells[i] = timing(r.Min)
		case ColAvg:
			cells[i] = timing(r.Avg)
		case ColMax:
			cells[i] = timing(r.Max)
		case ColRate:
			if r.HasRate {
				cells[i] = benchunit.Format(r.Rate, t.cfg.Decimals.Rate)
			} else {
				cells[i] = t.na()
			}
		case ColFlash:
			cells[i] = strconv.FormatInt(r.Flash, 10)
		case ColRAM:
			cells[i] = strconv.FormatInt(r.RAM, 10)
		case ColFlashDelta, ColRAMDelta:
			d := r.FlashDelta
			if col == ColRAMDelta {
				d = r.RAMDelta
			}
			if r.HasDelta {
				cells[i] = strconv.FormatInt(d, 10)
			} else {
				cells[i] = t.na()
			}
		}
	}
	return cells
}

// Headers returns the header text of each column of t.
func (t *Table) Headers() []string {
	hdrs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		hdrs[i] = t.cfg.header(col)
	}
	return hdrs
}

func (t *Table) na() string {
	if t.cfg.NA == "" {
		return "n/a"
	}
	return t.cfg.NA
}

// rows returns the rows of g in display order, including the geomean
// row.
func (g *Group) rows() []*Row {
	if g.GeoMean == nil {
		return g.Rows
	}
	return append(g.Rows[:len(g.Rows):len(g.Rows)], g.GeoMean)
}

// text lays out t as a single text table so that all groups share
// column widths.
func (t *Table) text() *texttab.Table {
	tab := &texttab.Table{Margin: strings.Repeat(" ", t.cfg.Padding)}
	align := func(col Column) texttab.CellOption {
		if col == ColLabel {
			return texttab.Left
		}
		return texttab.Right
	}
	for i, g := range t.Groups {
		if i > 0 {
			tab.Row()
		}
		tab.Row().Cell(g.Name, texttab.Overflow)
		tab.Row()
		for j, h := range t.Headers() {
			tab.Cell(h, align(t.Columns[j]))
		}
		tab.Row().Span(len(t.Columns), "", texttab.Fill('-'))
		for _, r := range g.rows() {
			tab.Row()
			for j, c := range t.Cells(r) {
				tab.Cell(c, align(t.Columns[j]))
			}
		}
	}
	return tab
}

// Widths returns the width of each column of t, computed over the
// headers and cells of every group.
func (t *Table) Widths() []int {
	ws := t.text().Widths()
	// Columns whose every cell is empty still occupy a slot.
	for len(ws) < len(t.Columns) {
		ws = append(ws, 0)
	}
	return ws
}

// Format writes t to w as fixed-width text.
//
// Each group is a title line, a header line, a rule as wide as the
// table, and one line per row. Groups are separated by a blank line.
// Every column is as wide as its widest cell across all groups.
func (t *Table) Format(w io.Writer) error {
	return t.text().Format(w)
}

// FormatBox writes t to w as bordered tables, one per group, each
// preceded by the group name. Column widths are shared across groups
// so the boxes line up.
func (t *Table) FormatBox(w io.Writer) error {
	ws := t.Widths()
	aligns := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		aligns[i] = tablewriter.ALIGN_RIGHT
		if col == ColLabel {
			aligns[i] = tablewriter.ALIGN_LEFT
		}
	}
	for i, g := range t.Groups {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, g.Name); err != nil {
			return err
		}
		bw := &errWriter{w: w}
		tw := tablewriter.NewWriter(bw)
		tw.SetAutoFormatHeaders(false)
		tw.SetAutoWrapText(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetColumnAlignment(aligns)
		for col, width := range ws {
			tw.SetColMinWidth(col, width)
		}
		tw.SetHeader(t.Headers())
		for _, r := range g.rows() {
			tw.Append(t.Cells(r))
		}
		tw.Render()
		if bw.err != nil {
			return bw.err
		}
	}
	return nil
}

// errWriter records the first error from w. tablewriter does not
// report write errors.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
