// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tabgen turns parsed timing samples and memory usages into
// grouped comparison tables.
//
// Generate classifies each sample into a group, derives its effective
// transfer rate from the configured payload size, and orders groups
// and rows. GenerateMemory does the same for memory usages, deriving
// the difference of each row from a baseline row instead. The
// resulting Table renders as fixed-width text whose columns line up
// across every group.
package tabgen

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/acebench/benchtab/benchunit"
	"github.com/acebench/benchtab/sampfmt"
)

// A Row is one rendered line of a Table.
type Row struct {
	sampfmt.Sample

	Group string

	// Rate is the effective transfer rate. HasRate is false if the
	// rate is not applicable because Avg is zero.
	Rate    float64
	HasRate bool

	// Flash and RAM are the sizes of a memory table row.
	// FlashDelta and RAMDelta are their differences from the
	// baseline row. HasDelta is false if the table has no baseline
	// row.
	Flash, RAM           int64
	FlashDelta, RAMDelta int64
	HasDelta             bool
}

// A Group is a section of a Table.
type Group struct {
	Name string
	Rows []*Row

	// GeoMean summarizes Rows if Config.GeoMean is set. Its Min,
	// Avg, and Max are NaN where the geometric mean is undefined.
	GeoMean *Row
}

// A Table is a set of grouped rows ready for rendering.
type Table struct {
	Kind    Kind
	Groups  []*Group
	Columns []Column

	cfg Config
}

// Generate builds a Table from samples using cfg.
//
// cfg is validated before anything else is done; if it is invalid,
// Generate returns a *ConfigError and no Table. Samples are not
// modified or retained.
func Generate(samples []*sampfmt.Sample, cfg *Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows := make([]*Row, len(samples))
	for i, s := range samples {
		row := &Row{Sample: *s}
		row.Rate, row.HasRate = benchunit.Rate(cfg.PayloadBits, s.Avg, cfg.ScaleFactor)
		rows[i] = row
	}
	t := newTable(Timing, rows, cfg)
	if cfg.GeoMean {
		for _, g := range t.Groups {
			g.GeoMean = geoMean(g, cfg)
		}
	}
	return t, nil
}

// GenerateMemory builds a memory Table from usages using cfg.
//
// If cfg.Baseline names a label of usages, every row carries its
// difference from the first row with that label; otherwise the delta
// columns are not applicable. Like Generate, GenerateMemory validates
// cfg first and returns a *ConfigError and no Table if it is invalid.
func GenerateMemory(usages []*sampfmt.Usage, cfg *Config) (*Table, error) {
	if err := cfg.ValidateMemory(); err != nil {
		return nil, err
	}

	var base *sampfmt.Usage
	if cfg.Baseline != "" {
		for _, u := range usages {
			if u.Label == cfg.Baseline {
				base = u
				break
			}
		}
	}
	rows := make([]*Row, len(usages))
	for i, u := range usages {
		row := &Row{Flash: u.Flash, RAM: u.RAM}
		row.Label = u.Label
		if base != nil {
			row.FlashDelta, row.RAMDelta = u.Flash-base.Flash, u.RAM-base.RAM
			row.HasDelta = true
		}
		rows[i] = row
	}
	return newTable(Memory, rows, cfg), nil
}

// newTable classifies rows into groups and orders both.
func newTable(kind Kind, rows []*Row, cfg *Config) *Table {
	t := &Table{Kind: kind, Columns: cfg.columns(kind), cfg: *cfg}
	cl := newClassifier(cfg)

	groups := make(map[string]*Group)
	var seen []*Group
	for _, row := range rows {
		row.Group = cl.group(row.Label)
		g := groups[row.Group]
		if g == nil {
			g = &Group{Name: row.Group}
			groups[row.Group] = g
			seen = append(seen, g)
		}
		g.Rows = append(g.Rows, row)
	}

	t.Groups = orderBy(seen, cfg.GroupOrder, func(g *Group) string { return g.Name })
	for _, g := range t.Groups {
		g.Rows = orderBy(g.Rows, cfg.Order[g.Name], func(r *Row) string { return r.Label })
	}
	return t
}

// orderBy returns xs with the elements whose key is listed in order
// first, in list order, followed by all others. Elements with equal
// keys keep their relative order. Keys in order that match nothing are
// ignored.
func orderBy[T any](xs []T, order []string, key func(T) string) []T {
	if len(order) == 0 {
		return xs
	}
	byKey := make(map[string][]T)
	for _, x := range xs {
		k := key(x)
		byKey[k] = append(byKey[k], x)
	}
	out := make([]T, 0, len(xs))
	listed := make(map[string]bool)
	for _, k := range order {
		if listed[k] {
			continue
		}
		listed[k] = true
		out = append(out, byKey[k]...)
	}
	for _, x := range xs {
		if !listed[key(x)] {
			out = append(out, x)
		}
	}
	return out
}

// geoMean returns the geometric mean row of g.
func geoMean(g *Group, cfg *Config) *Row {
	var mins, avgs, maxs []float64
	n := 0
	for _, r := range g.Rows {
		mins = append(mins, r.Min)
		avgs = append(avgs, r.Avg)
		maxs = append(maxs, r.Max)
		n += r.Samples
	}
	mean := func(xs []float64) float64 {
		// stats.GeoMean is NaN for empty or non-positive input.
		v := stats.GeoMean(xs)
		if math.IsInf(v, 0) {
			return math.NaN()
		}
		return v
	}
	row := &Row{
		Sample: *sampfmt.NewSample("geomean", n, mean(mins), mean(avgs), mean(maxs)),
		Group:  g.Name,
	}
	if !math.IsNaN(row.Avg) {
		row.Rate, row.HasRate = benchunit.Rate(cfg.PayloadBits, row.Avg, cfg.ScaleFactor)
	}
	return row
}
