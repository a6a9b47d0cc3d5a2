// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchtab turns raw per-platform timing captures into fixed-width
// comparison tables.
//
// Usage:
//
//	benchtab [flags] [label=]capture...
//	benchtab [flags] -config report.yaml
//
// Each capture is parsed into one row per variant: a label, a sample
// count, and the minimum, average, and maximum elapsed time. Rows are
// grouped by the -group rules, an effective transfer rate is derived
// from -payload-bits, and the result is printed as a table whose
// columns line up across all groups:
//
//	native
//	variant     samples  min  avg   max  rate
//	-----------------------------------------
//	FastDriver       50  100  120   150   0.7
//	SlowDriver       50  900  950  1000   0.1
//
// If more than one capture is given, each table is preceded by a
// "## label" line. A capture named "-", or no capture at all, is read
// from standard input. A capture that cannot be read does not stop the
// tables of the other captures from being printed, but benchtab exits
// with an error.
//
// A -layout with flash and ram fields, such as "label,flash,ram",
// reads memory captures instead and prints each variant's flash and
// static RAM size, with the difference from the -baseline variant:
//
//	other
//	variant           flash  ram  flash delta  ram delta
//	----------------------------------------------------
//	baseline            610   11            0          0
//	TwoWireInterface   2050  220         1440        209
//
// Lines of a capture that are not data (blank lines, comments,
// headers, prose) are ignored. Lines that look like data but cannot be
// parsed are skipped with a warning on standard error; they never stop
// the table from being generated.
//
// With -config, the platforms, capture layout, and table settings are
// read from a YAML report file instead. See package report for its
// format.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/acebench/benchtab/chart"
	"github.com/acebench/benchtab/report"
	"github.com/acebench/benchtab/sampfmt"
	"github.com/acebench/benchtab/tabgen"
)

// stdin is read for the "-" capture. It is replaced during testing.
var stdin io.Reader = os.Stdin

func main() {
	log := newLogger(os.Stderr)
	if err := benchtab(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	log.Level = logrus.WarnLevel
	return log
}

// groupFlag collects -group rules.
type groupFlag []tabgen.Rule

func (g *groupFlag) String() string {
	var parts []string
	for _, r := range *g {
		parts = append(parts, r.Pattern+"="+r.Group)
	}
	return strings.Join(parts, ",")
}

func (g *groupFlag) Set(s string) error {
	pattern, group, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want pattern=group, got %q", s)
	}
	*g = append(*g, tabgen.Rule{Pattern: pattern, Group: group})
	return nil
}

func benchtab(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("benchtab", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `Usage: benchtab [flags] [label=]capture...
       benchtab [flags] -config report.yaml

benchtab builds fixed-width comparison tables from raw timing captures.

Flags:
`)
		flags.PrintDefaults()
	}

	var groups groupFlag
	flagConfig := flags.String("config", "", "read platforms and table settings from YAML `file`")
	flagPayload := flags.Float64("payload-bits", 0, "payload size of one benchmark iteration in `bits`")
	flagScale := flags.Float64("scale", 1, "multiply bits per microsecond by `factor` to get the rate")
	flagTimingPrec := flags.Int("timing-prec", 0, "`digits` after the decimal point of min, avg and max")
	flagRatePrec := flags.Int("rate-prec", 1, "`digits` after the decimal point of the rate")
	flags.Var(&groups, "group", "put variants whose label starts with `pattern=group` in group (repeatable)")
	flagDefaultGroup := flags.String("default-group", "other", "`group` of variants matching no -group rule")
	flagGroupOrder := flags.String("group-order", "", "comma-separated `groups` to show first")
	flagGeomean := flags.Bool("geomean", false, "add a geometric mean row to each group")
	flagBaseline := flags.String("baseline", "", "compute memory deltas against the variant `label`")
	flagLayout := flags.String("layout", "label,samples,min,avg,max", "comma-separated capture `fields`; - skips a column")
	flagDelims := flags.String("delims", "", "capture column delimiter `chars` (default white space)")
	flagUnit := flags.String("unit", "", "time `unit` of timing captures: ns, us, ms, or s (default us)")
	flagFormat := flags.String("format", "text", "output `format`: text or box")
	flagChart := flags.String("chart", "", "write an SVG rate chart of each table to `dir`")
	flagJobs := flags.Int("j", runtime.GOMAXPROCS(0), "generate up to `n` tables in parallel")
	flagVerbose := flags.Bool("v", false, "log a summary of each table")
	if err := flags.Parse(args); err != nil {
		// flags has already reported the problem.
		return flag.ErrHelp
	}

	var write func(r *report.Report, w io.Writer) error
	switch *flagFormat {
	case "text":
		write = (*report.Report).WriteText
	case "box":
		write = (*report.Report).WriteBox
	default:
		return fmt.Errorf("unknown -format %q", *flagFormat)
	}

	log := newLogger(wErr)
	if *flagVerbose {
		log.Level = logrus.InfoLevel
	}

	var jobs []report.Job
	if *flagConfig != "" {
		if flags.NArg() > 0 {
			return fmt.Errorf("-config and capture arguments are mutually exclusive")
		}
		f, err := report.LoadFile(*flagConfig)
		if err != nil {
			return err
		}
		if jobs, err = f.Jobs(filepath.Dir(*flagConfig)); err != nil {
			return err
		}
	} else {
		layout, err := sampfmt.ParseLayout(*flagLayout)
		if err != nil {
			return fmt.Errorf("-layout: %w", err)
		}
		layout.Delims = *flagDelims
		layout.Unit = *flagUnit
		if err := layout.Validate(); err != nil {
			return err
		}

		cfg := tabgen.DefaultConfig()
		cfg.PayloadBits = *flagPayload
		cfg.ScaleFactor = *flagScale
		cfg.Decimals = tabgen.Decimals{Timing: *flagTimingPrec, Rate: *flagRatePrec}
		cfg.Rules = groups
		cfg.DefaultGroup = *flagDefaultGroup
		if *flagGroupOrder != "" {
			cfg.GroupOrder = strings.Split(*flagGroupOrder, ",")
		}
		cfg.GeoMean = *flagGeomean
		cfg.Baseline = *flagBaseline

		args := flags.Args()
		if len(args) == 0 {
			args = []string{"-"}
		}
		// Standard input is read once and shared by every "-"
		// capture, as jobs run concurrently.
		var stdinData []byte
		for _, in := range report.ParseInputs(args) {
			job := report.Job{Name: in.Label, Path: in.Path, Layout: layout, Config: cfg}
			if in.Path == "-" {
				if stdinData == nil {
					if stdinData, err = io.ReadAll(stdin); err != nil {
						return fmt.Errorf("reading standard input: %w", err)
					}
				}
				job.Path, job.Input = "<stdin>", bytes.NewReader(stdinData)
			}
			jobs = append(jobs, job)
		}
	}

	reports, runErr := report.RunAll(context.Background(), jobs, report.Options{Parallel: *flagJobs, Log: log})

	first := true
	for _, r := range reports {
		if r == nil {
			// Reported in runErr.
			continue
		}
		if len(reports) > 1 {
			if !first {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "## %s\n\n", r.Name)
		}
		first = false
		if err := write(r, w); err != nil {
			return err
		}
		if *flagChart != "" {
			path, err := writeChart(*flagChart, r)
			if err != nil {
				return err
			}
			log.WithField("report", r.Name).Infof("wrote %s", path)
		}
	}
	return runErr
}

// writeChart saves the rate chart, or for memory tables the size
// chart, of r as an SVG file in dir and returns its path.
func writeChart(dir string, r *report.Report) (string, error) {
	draw := chart.Rates
	if r.Table.Kind == tabgen.Memory {
		draw = chart.Sizes
	}
	pl, err := draw(r.Table, r.Name)
	if err != nil {
		return "", fmt.Errorf("charting %s: %w", r.Name, err)
	}
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|# `, r) {
			return '_'
		}
		return r
	}, r.Name)
	path := filepath.Join(dir, name+".svg")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := chart.Save(pl, f, "svg"); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
