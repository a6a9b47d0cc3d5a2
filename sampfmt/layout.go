// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampfmt

import (
	"fmt"
	"strings"

	"github.com/acebench/benchtab/benchunit"
)

// A Field identifies one column of a capture data line.
type Field int

const (
	// FieldSkip is a column that is present in the capture but
	// ignored.
	FieldSkip Field = iota
	FieldLabel
	FieldSamples
	FieldMin
	FieldAvg
	FieldMax
	FieldFlash
	FieldRAM
)

var fieldNames = []string{
	FieldSkip:    "-",
	FieldLabel:   "label",
	FieldSamples: "samples",
	FieldMin:     "min",
	FieldAvg:     "avg",
	FieldMax:     "max",
	FieldFlash:   "flash",
	FieldRAM:     "ram",
}

var (
	timingFields = []Field{FieldSamples, FieldMin, FieldAvg, FieldMax}
	memoryFields = []Field{FieldFlash, FieldRAM}
)

func (f Field) String() string {
	if f >= 0 && int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// A Layout describes the on-disk shape of a capture.
type Layout struct {
	// Fields is the order of the columns on a data line.
	// FieldLabel must appear exactly once, followed in any order by
	// either each of FieldSamples, FieldMin, FieldAvg, and FieldMax
	// (a timing capture) or each of FieldFlash and FieldRAM (a
	// memory capture), exactly once. Columns past the end of Fields
	// are ignored.
	Fields []Field

	// Delims is the set of characters separating columns. If
	// empty, columns are separated by runs of white space.
	// Adjacent delimiters are treated as one.
	Delims string

	// Comment is the prefix of comment lines. Leading white space
	// is ignored. If empty, there are no comment lines.
	Comment string

	// Begin and End are optional section markers. If Begin is
	// non-empty, only lines following a line equal to Begin and
	// preceding the next line equal to End are considered.
	Begin, End string

	// Unit is the time unit of the min, avg, and max columns, such
	// as "us" or "ms". Values are converted to microseconds. The
	// empty unit means microseconds. Memory captures have no unit.
	Unit string
}

// DefaultLayout returns the layout "label samples min avg max",
// delimited by white space, with "#" comments and no section markers.
func DefaultLayout() *Layout {
	return &Layout{
		Fields:  []Field{FieldLabel, FieldSamples, FieldMin, FieldAvg, FieldMax},
		Comment: "#",
	}
}

// ParseLayout parses a comma-separated list of field names, such as
// "label,min,avg,max,samples" or "label,flash,ram", into a Layout with the default
// delimiters and comment prefix. The name "-" skips a column.
func ParseLayout(s string) (*Layout, error) {
	l := DefaultLayout()
	l.Fields = l.Fields[:0]
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		found := false
		for f, fn := range fieldNames {
			if fn == name {
				l.Fields = append(l.Fields, Field(f))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown layout field %q", name)
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Memory reports whether l describes a memory capture.
func (l *Layout) Memory() bool {
	for _, f := range l.Fields {
		if f == FieldFlash || f == FieldRAM {
			return true
		}
	}
	return false
}

// Validate checks that every required field appears exactly once.
func (l *Layout) Validate() error {
	seen := make([]int, len(fieldNames))
	for _, f := range l.Fields {
		if f < 0 || int(f) >= len(fieldNames) {
			return fmt.Errorf("bad layout field %v", f)
		}
		seen[f]++
	}
	want, other := timingFields, memoryFields
	if l.Memory() {
		want, other = other, want
	}
	for _, f := range append([]Field{FieldLabel}, want...) {
		switch seen[f] {
		case 0:
			return fmt.Errorf("layout is missing field %s", f)
		case 1:
		default:
			return fmt.Errorf("layout has field %s more than once", f)
		}
	}
	for _, f := range other {
		if seen[f] > 0 {
			return fmt.Errorf("layout mixes timing and memory fields")
		}
	}
	if l.End != "" && l.Begin == "" {
		return fmt.Errorf("layout has an end marker but no begin marker")
	}
	if _, err := benchunit.MicrosFactor(l.Unit); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if l.Memory() && l.Unit != "" {
		return fmt.Errorf("layout has time unit %q but describes a memory capture", l.Unit)
	}
	return nil
}

func (l *Layout) String() string {
	names := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}
