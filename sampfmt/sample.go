// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sampfmt reads raw per-platform timing and memory captures.
//
// A capture is a loosely structured text file produced by an external
// benchmark harness running on the target hardware. Each data line of
// a timing capture holds a variant label followed by a sample count
// and the minimum, average and maximum elapsed time in microseconds.
// Each data line of a memory capture holds a variant label and the
// flash and static RAM sizes of its build, in bytes. The order of these
// fields, their delimiters, and optional section markers are described
// by a Layout, so the reader can follow whatever shape the capture tool
// emits without the tool having to change.
//
// Lines that are not data (blank lines, comments, headers, prose) are
// skipped. Data lines that fail to parse are reported as *SyntaxError
// records and never stop the reader.
package sampfmt

import "fmt"

// A Sample is the timing summary of a single variant as captured on
// one platform.
type Sample struct {
	// Label identifies the implementation or configuration under
	// test, for example "TwoWireInterface<TwoWire>,400kHz".
	Label string

	// Samples is the number of observations backing the
	// statistics.
	Samples int

	// Min, Avg, and Max are elapsed times in microseconds.
	// Min <= Avg <= Max.
	Min, Avg, Max float64

	// fileName and line record where this Sample was read from.
	fileName string
	line     int
}

// NewSample returns a Sample that was not read from a file.
func NewSample(label string, samples int, min, avg, max float64) *Sample {
	return &Sample{Label: label, Samples: samples, Min: min, Avg: avg, Max: max}
}

// Clone makes a copy of s that does not share storage with s.
func (s *Sample) Clone() *Sample {
	s2 := *s
	return &s2
}

// Pos returns the file name and line number of s.
func (s *Sample) Pos() (fileName string, line int) {
	return s.fileName, s.line
}

func (s *Sample) String() string {
	return fmt.Sprintf("%s %d %v/%v/%v", s.Label, s.Samples, s.Min, s.Avg, s.Max)
}

// A Usage is the memory footprint of a single variant as built for
// one platform.
type Usage struct {
	Label string

	// Flash and RAM are the program and static memory sizes in
	// bytes.
	Flash, RAM int64

	fileName string
	line     int
}

// NewUsage returns a Usage that was not read from a file.
func NewUsage(label string, flash, ram int64) *Usage {
	return &Usage{Label: label, Flash: flash, RAM: ram}
}

// Clone makes a copy of u.
func (u *Usage) Clone() *Usage {
	u2 := *u
	return &u2
}

// Pos returns the file name and line number of u.
func (u *Usage) Pos() (fileName string, line int) {
	return u.fileName, u.line
}

func (u *Usage) String() string {
	return fmt.Sprintf("%s %d/%d", u.Label, u.Flash, u.RAM)
}

// A Record is a single record read from a capture. It is a *Sample or
// a *Usage, depending on the Layout, or a *SyntaxError.
type Record interface {
	// Pos returns the position of this record as a file name and a
	// 1-based line number within that file. If this record was not
	// read from a file, it returns "", 0.
	Pos() (fileName string, line int)
}

var _ Record = (*Sample)(nil)
var _ Record = (*Usage)(nil)
var _ Record = (*SyntaxError)(nil)

// A SyntaxError represents a data line of a capture that could not be
// parsed.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}
