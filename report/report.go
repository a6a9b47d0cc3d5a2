// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report runs the capture-to-table pipeline for a set of
// platforms.
//
// Each platform is an independent Job: its own input, layout, and
// table configuration. Jobs share no mutable state, so RunAll may run
// them in parallel while still returning reports in job order.
package report

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/acebench/benchtab/sampfmt"
	"github.com/acebench/benchtab/tabgen"
)

// A Job describes one table to generate.
type Job struct {
	// Name identifies the job in output and diagnostics, usually
	// the platform name.
	Name string

	// Path is the capture file to read. It is used for
	// diagnostics and, if Input is nil, opened for reading.
	Path string

	// Input, if non-nil, is read instead of opening Path.
	Input io.Reader

	// Layout is the shape of the capture. If nil,
	// sampfmt.DefaultLayout is used. A memory layout produces a
	// memory table.
	Layout *sampfmt.Layout

	Config *tabgen.Config
}

// A Report is the result of running a Job.
type Report struct {
	Name  string
	Table *tabgen.Table

	// Skipped lists the lines of the capture that looked like
	// data but could not be parsed.
	Skipped []*sampfmt.SyntaxError
}

// Run parses the capture of job and generates its table.
//
// The configuration and layout are checked before the input is read.
// Malformed capture lines are not errors; they are returned in
// Report.Skipped.
func Run(job Job) (*Report, error) {
	cfg := job.Config
	if cfg == nil {
		cfg = tabgen.DefaultConfig()
	}
	memory := job.Layout != nil && job.Layout.Memory()
	validate := cfg.Validate
	if memory {
		validate = cfg.ValidateMemory
	}
	if err := validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", job.Name)
	}
	if job.Layout != nil {
		if err := job.Layout.Validate(); err != nil {
			return nil, errors.Wrapf(err, "%s", job.Name)
		}
	}

	in := job.Input
	if in == nil {
		f, err := os.Open(job.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", job.Name)
		}
		defer f.Close()
		in = f
	}
	var (
		t       *tabgen.Table
		skipped []*sampfmt.SyntaxError
		err     error
	)
	if memory {
		var usages []*sampfmt.Usage
		if usages, skipped, err = sampfmt.ReadUsage(in, job.Path, job.Layout); err != nil {
			return nil, errors.Wrapf(err, "reading %s", job.Name)
		}
		t, err = tabgen.GenerateMemory(usages, cfg)
	} else {
		var samples []*sampfmt.Sample
		if samples, skipped, err = sampfmt.ReadAll(in, job.Path, job.Layout); err != nil {
			return nil, errors.Wrapf(err, "reading %s", job.Name)
		}
		t, err = tabgen.Generate(samples, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s", job.Name)
	}
	return &Report{Name: job.Name, Table: t, Skipped: skipped}, nil
}

// WriteText writes the table of r to w as fixed-width text, ready to
// be embedded verbatim in a document.
func (r *Report) WriteText(w io.Writer) error {
	return r.Table.Format(w)
}

// WriteBox writes the table of r to w as bordered text.
func (r *Report) WriteBox(w io.Writer) error {
	return r.Table.FormatBox(w)
}
