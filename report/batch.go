// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Options controls RunAll.
type Options struct {
	// Parallel is the maximum number of jobs to run at once. If
	// zero or negative, there is no limit.
	Parallel int

	// Log, if non-nil, receives a warning for every skipped
	// capture line and a summary per report. Entries are logged in
	// job order once every job has finished.
	Log logrus.FieldLogger
}

// RunAll runs jobs and returns their reports in the same order.
//
// A failed job does not stop the others: its report is nil, and RunAll
// returns the reports of the other jobs together with the errors of
// all failed jobs, combined in job order. Once ctx is done, jobs that
// have not started yet fail with ctx.Err().
func RunAll(ctx context.Context, jobs []Job, opts Options) ([]*Report, error) {
	var g errgroup.Group
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	reports := make([]*Report, len(jobs))
	errs := make([]error, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if errs[i] = ctx.Err(); errs[i] != nil {
				return nil
			}
			reports[i], errs[i] = Run(job)
			return nil
		})
	}
	g.Wait()

	if opts.Log != nil {
		for _, r := range reports {
			if r != nil {
				r.Log(opts.Log)
			}
		}
	}
	return reports, multierr.Combine(errs...)
}

// Log writes the diagnostics of r to log.
func (r *Report) Log(log logrus.FieldLogger) {
	log = log.WithField("report", r.Name)
	for _, e := range r.Skipped {
		log.WithFields(logrus.Fields{
			"file":   e.FileName,
			"line":   e.Line,
			"reason": e.Msg,
		}).Warn("skipped malformed line")
	}
	rows := 0
	for _, g := range r.Table.Groups {
		rows += len(g.Rows)
	}
	entry := log.WithFields(logrus.Fields{
		"groups":  len(r.Table.Groups),
		"rows":    rows,
		"skipped": len(r.Skipped),
	})
	if len(r.Skipped) > 0 {
		entry.Warnf("%d malformed lines skipped", len(r.Skipped))
	} else {
		entry.Info("generated table")
	}
}
