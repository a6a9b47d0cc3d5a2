// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out fixed-width text tables.
//
// Column widths are computed over every cell of the table before
// anything is written, so a table built from several sections lines up
// from top to bottom.
package texttab

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Many of its methods return the Table so callers can easily chain
// them to build up many cells at once.
type Table struct {
	// Margin is the default left margin of non-empty cells after
	// the first column.
	Margin string

	cells []cell
	cols  int

	curRow, curCol int
}

type cell struct {
	row, col, span int
	value          string
	leftMargin     string
	alignment      align

	// overflow cells are printed as-is and do not take part in
	// width computation.
	overflow bool
	// fill, if non-zero, is repeated to the full width of the cell
	// in place of value.
	fill rune
}

type CellOption func(c *cell)

var (
	Left   CellOption = func(c *cell) { c.alignment = alignLeft }
	Right  CellOption = func(c *cell) { c.alignment = alignRight }

	// Overflow marks a cell whose value does not widen its columns
	// and may run past them, such as a section title.
	Overflow CellOption = func(c *cell) { c.overflow = true }
)

// Fill fills a cell with r instead of its value. Combined with Span it
// draws rules across the table.
func Fill(r rune) CellOption {
	return func(c *cell) {
		c.fill = r
	}
}

type align int

const (
	alignLeft align = iota
	alignRight
)

func (a align) lpad(s string, w int) string {
	switch a {
	default:
		return s
	case alignRight:
		return fmt.Sprintf("%*s", w, s)
	}
}

// Row starts a new row in table t.
func (t *Table) Row() *Table {
	if len(t.cells) > 0 {
		t.curRow++
	}
	t.curCol = 0
	return t
}

// Cell adds a single-column cell at the current row and column.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	return t.Span(1, value, opts...)
}

// Span adds a multi-column cell at the current row and column.
// A span never widens the columns it covers; if its value is longer
// than those columns it runs past them.
func (t *Table) Span(cols int, value string, opts ...CellOption) *Table {
	c := cell{row: t.curRow, col: t.curCol, span: cols, value: value}
	if t.curCol > 0 && value != "" {
		c.leftMargin = t.Margin
	}
	for _, o := range opts {
		o(&c)
	}
	if cols > 1 {
		c.overflow = true
	}
	t.cells = append(t.cells, c)

	t.curCol += cols
	if t.curCol > t.cols {
		t.cols = t.curCol
	}
	return t
}

// layout computes the left margin width and content width of each
// column.
func (t *Table) layout() (lmargin, ws []int) {
	lmargin = make([]int, t.cols)
	ws = make([]int, t.cols)
	for _, c := range t.cells {
		if c.overflow {
			continue
		}
		lmargin[c.col] = max(lmargin[c.col], utf8.RuneCountInString(c.leftMargin))
		ws[c.col] = max(ws[c.col], utf8.RuneCountInString(c.value))
	}
	return
}

// Widths returns the content width of each column of t, excluding
// margins.
func (t *Table) Widths() []int {
	_, ws := t.layout()
	return ws
}

// Format lays out table t and writes it to w.
func (t *Table) Format(w io.Writer) error {
	lmargin, ws := t.layout()

	// offs[i] is where column i's left margin begins. The final
	// entry is the width of the table.
	offs := make([]int, t.cols+1)
	off := 0
	for i := range ws {
		offs[i] = off
		off += lmargin[i] + ws[i]
	}
	offs[t.cols] = off

	// Put the cells into top-to-bottom left-to-right order.
	cells := append([]cell(nil), t.cells...)
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].row != cells[j].row {
			return cells[i].row < cells[j].row
		}
		return cells[i].col < cells[j].col
	})

	var line strings.Builder
	row, off := 0, 0
	flush := func() error {
		_, err := io.WriteString(w, strings.TrimRight(line.String(), " ")+"\n")
		line.Reset()
		off = 0
		return err
	}
	for _, c := range cells {
		for c.row > row {
			if err := flush(); err != nil {
				return err
			}
			row++
		}
		if c.value == "" && c.fill == 0 {
			continue
		}

		// Space to the cell's starting offset and print its left
		// margin. A spanning cell fills the margins inside it.
		if pad := offs[c.col] - off; pad > 0 {
			fmt.Fprintf(&line, "%*s", pad, "")
		}
		fmt.Fprintf(&line, "%*s", lmargin[c.col], c.leftMargin)
		off = max(off, offs[c.col]) + lmargin[c.col]
		end := min(c.col+c.span, t.cols)
		tw := offs[end] - off

		s := c.value
		switch {
		case c.fill != 0:
			s = strings.Repeat(string(c.fill), tw)
		case !c.overflow || c.span > 1:
			s = c.alignment.lpad(s, tw)
		}
		line.WriteString(s)
		off += utf8.RuneCountInString(s)
	}
	if len(cells) > 0 || row > 0 {
		return flush()
	}
	return nil
}
