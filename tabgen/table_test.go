// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabgen

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acebench/benchtab/sampfmt"
)

func s(label string, samples int, min, avg, max float64) *sampfmt.Sample {
	return sampfmt.NewSample(label, samples, min, avg, max)
}

func config(payloadBits, scale float64, rules ...Rule) *Config {
	c := DefaultConfig()
	c.PayloadBits = payloadBits
	c.ScaleFactor = scale
	c.Rules = rules
	return c
}

func format(t *testing.T, tab *Table) string {
	t.Helper()
	var buf bytes.Buffer
	if err := tab.Format(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func checkFormat(t *testing.T, samples []*sampfmt.Sample, cfg *Config, want string) {
	t.Helper()
	tab, err := Generate(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := format(t, tab); got != want {
		t.Errorf("want:\n%s\ngot:\n%s\ndiff (-want +got):\n%s", want, got, cmp.Diff(want, got))
	}
}

func TestTwoVariants(t *testing.T) {
	samples := []*sampfmt.Sample{
		s("FastDriver", 50, 100, 120, 150),
		s("SlowDriver", 50, 900, 950, 1000),
	}
	cfg := config(88, 1, Rule{Match: MatchSuffix, Pattern: "Driver", Group: "native"})

	checkFormat(t, samples, cfg, `native
variant     samples  min  avg   max  rate
-----------------------------------------
FastDriver       50  100  120   150   0.7
SlowDriver       50  900  950  1000   0.1
`)

	tab, err := Generate(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tab.Widths(), []int{10, 7, 3, 3, 4, 4}; !cmp.Equal(got, want) {
		t.Errorf("Widths() = %v, want %v", got, want)
	}
	rows := tab.Groups[0].Rows
	if ratio := rows[0].Rate / rows[1].Rate; ratio < 7.5 || ratio > 8.5 {
		t.Errorf("fast/slow rate ratio = %v, want about 8", ratio)
	}
}

func TestGroups(t *testing.T) {
	samples := []*sampfmt.Sample{
		s("SoftSPI", 10, 2000, 2500, 3000),
		s("HardSPI", 10, 10, 12, 15),
		s("HardI2C", 5, 0, 0, 0),
	}
	cfg := config(88, 1000,
		Rule{Pattern: "Soft", Group: "software"},
		Rule{Pattern: "Hard", Group: "native"},
	)

	checkFormat(t, samples, cfg, `software
variant  samples   min   avg   max    rate
------------------------------------------
SoftSPI       10  2000  2500  3000    35.2

native
variant  samples   min   avg   max    rate
------------------------------------------
HardSPI       10    10    12    15  7333.3
HardI2C        5     0     0     0     n/a
`)

	cfg.GroupOrder = []string{"native", "missing"}
	cfg.Padding = 1
	cfg.Columns = []Column{ColLabel, ColAvg, ColRate}
	cfg.Headers = map[Column]string{ColRate: "kbps"}
	cfg.NA = "-"
	checkFormat(t, samples, cfg, `native
variant  avg   kbps
-------------------
HardSPI   12 7333.3
HardI2C    0      -

software
variant  avg   kbps
-------------------
SoftSPI 2500   35.2
`)
}

func TestMalformedLine(t *testing.T) {
	const input = `GoodDriver 10 100 110 120
The breadboard was reset before this run.
BadDriver 10 100 1x0 120
`
	samples, skipped, err := sampfmt.ReadAll(strings.NewReader(input), "capture.txt", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(skipped), skipped)
	}
	if f, l := skipped[0].Pos(); f != "capture.txt" || l != 3 {
		t.Errorf("diagnostic at %s:%d, want capture.txt:3", f, l)
	}

	tab, err := Generate(samples, config(88, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Groups) != 1 || len(tab.Groups[0].Rows) != 1 {
		t.Fatalf("want exactly one row, got:\n%s", format(t, tab))
	}
	if got := tab.Groups[0].Rows[0].Label; got != "GoodDriver" {
		t.Errorf("row label = %s, want GoodDriver", got)
	}
}

func TestZeroAverage(t *testing.T) {
	tab, err := Generate([]*sampfmt.Sample{s("Idle", 3, 0, 0, 0)}, config(88, 1))
	if err != nil {
		t.Fatal(err)
	}
	row := tab.Groups[0].Rows[0]
	if row.HasRate {
		t.Errorf("HasRate = true, want false")
	}
	cells := tab.Cells(row)
	if got := cells[len(cells)-1]; got != "n/a" {
		t.Errorf("rate cell = %q, want n/a", got)
	}
}

func TestRate(t *testing.T) {
	for _, test := range []struct {
		payload, scale, avg float64
		prec                int
		want                string
	}{
		{88, 1, 120, 1, "0.7"},
		{99, 1000, 1107, 1, "89.4"},
		{99, 1000, 1107, 0, "89"},
		{100, 1, 8, 1, "12.5"},
		{100, 1, 8, 0, "13"}, // half away from zero
		{100, 1, 400, 1, "0.3"},
	} {
		cfg := config(test.payload, test.scale)
		cfg.Decimals.Rate = test.prec
		cfg.Columns = []Column{ColLabel, ColRate}
		tab, err := Generate([]*sampfmt.Sample{s("x", 1, 0, test.avg, test.avg)}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if got := tab.Cells(tab.Groups[0].Rows[0])[1]; got != test.want {
			t.Errorf("%v bits / %v us * %v at %d places = %s, want %s", test.payload, test.avg, test.scale, test.prec, got, test.want)
		}
	}
}

func TestTimingDecimals(t *testing.T) {
	cfg := config(8, 1)
	cfg.Decimals = Decimals{Timing: 2, Rate: 3}
	cfg.Columns = []Column{ColLabel, ColMin, ColAvg, ColMax, ColRate}
	checkFormat(t, []*sampfmt.Sample{s("x", 1, 1.5, 2.125, 3)}, cfg, `other
variant   min   avg   max   rate
--------------------------------
x        1.50  2.13  3.00  3.765
`)
}

func TestClassify(t *testing.T) {
	cfg := config(1, 1,
		Rule{Match: MatchExact, Pattern: "Special", Group: "exact"},
		Rule{Match: MatchRegexp, Pattern: `^TwoWire.*,\d+kHz$`, Group: "regexp"},
		Rule{Match: MatchGlob, Pattern: "Soft*<*>", Group: "glob"},
		Rule{Match: MatchSuffix, Pattern: "Interface", Group: "suffix"},
		Rule{Match: MatchSubstring, Pattern: "Wire", Group: "substring"},
		Rule{Pattern: "Special", Group: "prefix"},
	)
	cfg.DefaultGroup = "rest"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	for label, want := range map[string]string{
		"Special":                         "exact",
		"SpecialDriver":                   "prefix",
		"TwoWireInterface<TwoWire>,400kHz": "regexp",
		"SoftWire<TwoWire>":               "glob",
		"SimpleWireInterface":             "suffix",
		"OneWireBus":                      "substring",
		"SPI":                             "rest",
	} {
		if got := cfg.Classify(label); got != want {
			t.Errorf("Classify(%q) = %s, want %s", label, got, want)
		}
	}
}

func TestGrouping(t *testing.T) {
	// Every sample lands in exactly one group, and that group is
	// the one the first matching rule names.
	labels := []string{"aa", "ab", "ba", "bb", "abc", "c", "", "a"}
	cfg := config(1, 1,
		Rule{Pattern: "ab", Group: "G1"},
		Rule{Match: MatchSubstring, Pattern: "b", Group: "G2"},
		Rule{Pattern: "a", Group: "G3"},
	)
	var samples []*sampfmt.Sample
	for _, l := range labels {
		samples = append(samples, s(l, 1, 1, 1, 1))
	}
	tab, err := Generate(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string][]string)
	n := 0
	for _, g := range tab.Groups {
		for _, r := range g.Rows {
			if r.Group != g.Name {
				t.Errorf("row %s has group %s but is in group %s", r.Label, r.Group, g.Name)
			}
			got[g.Name] = append(got[g.Name], r.Label)
			n++
		}
	}
	if n != len(samples) {
		t.Errorf("got %d rows, want %d", n, len(samples))
	}
	want := map[string][]string{
		"G1":    {"ab", "abc"},
		"G2":    {"ba", "bb"},
		"G3":    {"aa", "a"},
		"other": {"c", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}
	var names []string
	for _, g := range tab.Groups {
		names = append(names, g.Name)
	}
	if diff := cmp.Diff([]string{"G3", "G1", "G2", "other"}, names); diff != "" {
		t.Errorf("group order (-want +got):\n%s", diff)
	}
}

func TestOrder(t *testing.T) {
	samples := []*sampfmt.Sample{
		s("c", 1, 1, 1, 1),
		s("a", 1, 1, 1, 1),
		s("b", 1, 1, 1, 1),
		s("a", 2, 1, 1, 1),
		s("d", 1, 1, 1, 1),
	}
	cfg := config(1, 1)
	cfg.Order = map[string][]string{"other": {"a", "b", "zzz", "a"}}
	tab, err := Generate(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	type key struct {
		Label   string
		Samples int
	}
	var got []key
	for _, r := range tab.Groups[0].Rows {
		got = append(got, key{r.Label, r.Samples})
	}
	want := []key{{"a", 1}, {"a", 2}, {"b", 1}, {"c", 1}, {"d", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row order (-want +got):\n%s", diff)
	}
}

// TestAlignment checks that every cell of every group starts and ends
// at the same offsets, which are determined by the widest cell of each
// column across the whole table.
func TestAlignment(t *testing.T) {
	samples := []*sampfmt.Sample{
		s("x", 1, 1, 2, 3),
		s("TwoWireInterface<TwoWire>,400kHz", 100, 10, 20, 30),
		s("y", 12345, 0, 0, 123456),
		s("SimpleWire", 7, 5.5, 6, 7),
		s("z", 0, 1, 1, 1),
	}
	cfg := config(99, 1000,
		Rule{Match: MatchSubstring, Pattern: "Wire", Group: "wire"},
	)
	cfg.GeoMean = true
	cfg.Padding = 3
	tab, err := Generate(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Compute the widths independently of the layout code.
	ws := make([]int, len(tab.Columns))
	grow := func(cells []string) {
		for i, c := range cells {
			ws[i] = max(ws[i], len(c))
		}
	}
	grow(tab.Headers())
	for _, g := range tab.Groups {
		for _, r := range g.rows() {
			grow(tab.Cells(r))
		}
	}
	if diff := cmp.Diff(ws, tab.Widths()); diff != "" {
		t.Errorf("Widths (-want +got):\n%s", diff)
	}

	starts := make([]int, len(ws))
	total := 0
	for i, w := range ws {
		if i > 0 {
			total += cfg.Padding
		}
		starts[i] = total
		total += w
	}
	checkLine := func(line string, cells []string) {
		t.Helper()
		if len(line) != total {
			t.Errorf("line %q has width %d, want %d", line, len(line), total)
			return
		}
		for i, c := range cells {
			got := line[starts[i] : starts[i]+ws[i]]
			var want string
			if tab.Columns[i] == ColLabel {
				want = c + strings.Repeat(" ", ws[i]-len(c))
			} else {
				want = strings.Repeat(" ", ws[i]-len(c)) + c
			}
			if got != want {
				t.Errorf("line %q column %d is %q, want %q", line, i, got, want)
			}
		}
	}

	lines := strings.Split(strings.TrimSuffix(format(t, tab), "\n"), "\n")
	for gi, g := range tab.Groups {
		if gi > 0 {
			if lines[0] != "" {
				t.Fatalf("want blank line between groups, got %q", lines[0])
			}
			lines = lines[1:]
		}
		if lines[0] != g.Name {
			t.Errorf("group title is %q, want %q", lines[0], g.Name)
		}
		checkLine(lines[1], tab.Headers())
		if want := strings.Repeat("-", total); lines[2] != want {
			t.Errorf("rule is %q, want %q", lines[2], want)
		}
		lines = lines[3:]
		for _, r := range g.rows() {
			checkLine(lines[0], tab.Cells(r))
			lines = lines[1:]
		}
	}
	if len(lines) != 0 {
		t.Errorf("unexpected trailing lines %q", lines)
	}
}

func TestIdempotent(t *testing.T) {
	samples := []*sampfmt.Sample{
		s("b2", 1, 1, 2, 3),
		s("a1", 1, 4, 5, 6),
		s("c3", 1, 7, 8, 9),
		s("a2", 1, 0, 0, 0),
		s("b1", 1, 1, 1, 1),
	}
	cfg := config(64, 1000,
		Rule{Pattern: "a", Group: "A"},
		Rule{Pattern: "b", Group: "B"},
		Rule{Pattern: "c", Group: "C"},
	)
	cfg.Order = map[string][]string{"A": {"a2"}, "B": {"b1"}, "C": {"c3"}}
	cfg.GeoMean = true
	var first string
	for i := 0; i < 10; i++ {
		tab, err := Generate(samples, cfg)
		if err != nil {
			t.Fatal(err)
		}
		got := format(t, tab)
		if i == 0 {
			first = got
		} else if got != first {
			t.Fatalf("run %d differs:\n%s", i, cmp.Diff(first, got))
		}
	}
}

func TestGeoMean(t *testing.T) {
	cfg := config(80, 1)
	cfg.GeoMean = true
	checkFormat(t, []*sampfmt.Sample{
		s("a", 2, 1, 2, 4),
		s("b", 3, 4, 8, 16),
	}, cfg, `other
variant  samples  min  avg  max  rate
-------------------------------------
a              2    1    2    4  40.0
b              3    4    8   16  10.0
geomean        5    2    4    8  20.0
`)

	tab, err := Generate([]*sampfmt.Sample{s("a", 1, 0, 0, 2), s("b", 1, 1, 2, 8)}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	gm := tab.Groups[0].GeoMean
	if !math.IsNaN(gm.Min) || !math.IsNaN(gm.Avg) || gm.HasRate {
		t.Errorf("geomean over zeros = %v, want NaN min and avg and no rate", gm)
	}
	if math.Abs(gm.Max-4) > 1e-9 {
		t.Errorf("geomean max = %v, want 4", gm.Max)
	}
	if diff := cmp.Diff([]string{"geomean", "2", "n/a", "n/a", "4", "n/a"}, tab.Cells(gm)); diff != "" {
		t.Errorf("geomean cells (-want +got):\n%s", diff)
	}
}

func TestConfigErrors(t *testing.T) {
	for _, test := range []struct {
		name  string
		edit  func(c *Config)
		field string
	}{
		{"zero payload", func(c *Config) { c.PayloadBits = 0 }, "payload_bits"},
		{"negative payload", func(c *Config) { c.PayloadBits = -8 }, "payload_bits"},
		{"NaN payload", func(c *Config) { c.PayloadBits = math.NaN() }, "payload_bits"},
		{"zero scale", func(c *Config) { c.ScaleFactor = 0 }, "scale_factor"},
		{"infinite scale", func(c *Config) { c.ScaleFactor = math.Inf(1) }, "scale_factor"},
		{"empty pattern", func(c *Config) { c.Rules = []Rule{{Group: "g"}} }, "grouping_rules[0]"},
		{"empty group", func(c *Config) { c.Rules = []Rule{{Pattern: "p"}} }, "grouping_rules[0]"},
		{"unknown match", func(c *Config) { c.Rules = []Rule{{Match: "fuzzy", Pattern: "p", Group: "g"}} }, "grouping_rules[0]"},
		{"bad regexp", func(c *Config) { c.Rules = []Rule{{Match: MatchRegexp, Pattern: "(", Group: "g"}} }, "grouping_rules[0]"},
		{"bad glob", func(c *Config) { c.Rules = []Rule{{Match: MatchGlob, Pattern: "[", Group: "g"}} }, "grouping_rules[0]"},
		{"contradictory rules", func(c *Config) {
			c.Rules = []Rule{{Pattern: "p", Group: "g"}, {Match: MatchSuffix, Pattern: "p", Group: "h"}, {Match: MatchPrefix, Pattern: "p", Group: "h"}}
		}, "grouping_rules[2]"},
		{"negative timing decimals", func(c *Config) { c.Decimals.Timing = -1 }, "decimal_places.timing"},
		{"negative rate decimals", func(c *Config) { c.Decimals.Rate = -1 }, "decimal_places.rate"},
		{"negative padding", func(c *Config) { c.Padding = -2 }, "padding"},
		{"unknown column", func(c *Config) { c.Columns = []Column{ColLabel, "median"} }, "columns"},
		{"duplicate column", func(c *Config) { c.Columns = []Column{ColLabel, ColAvg, ColAvg} }, "columns"},
		{"missing label", func(c *Config) { c.Columns = []Column{ColAvg, ColRate} }, "columns"},
		{"unknown header", func(c *Config) { c.Headers = map[Column]string{"speed": "kbps"} }, "headers"},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := config(88, 1)
			test.edit(cfg)
			tab, err := Generate([]*sampfmt.Sample{s("a", 1, 1, 1, 1)}, cfg)
			if tab != nil {
				t.Errorf("got a table for an invalid configuration")
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("got error %v, want *ConfigError", err)
			}
			if cerr.Field != test.field {
				t.Errorf("got error for field %s, want %s: %v", cerr.Field, test.field, err)
			}
		})
	}

	// Repeating a rule is not a contradiction.
	cfg := config(88, 1, Rule{Pattern: "p", Group: "g"}, Rule{Match: MatchPrefix, Pattern: "p", Group: "g"})
	if err := cfg.Validate(); err != nil {
		t.Errorf("repeated rule: %v", err)
	}
}

func TestFormatBox(t *testing.T) {
	samples := []*sampfmt.Sample{
		s("TwoWireInterface<TwoWire>,400kHz", 20, 281, 285, 296),
		s("SimpleWireInterface,1us", 20, 1052, 1058, 1076),
		s("SoftWire", 20, 12, 12, 13),
	}
	cfg := config(99, 1000,
		Rule{Match: MatchSubstring, Pattern: "Interface", Group: "native"},
		Rule{Pattern: "Soft", Group: "software"},
	)
	tab, err := Generate(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tab.FormatBox(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// Every box line has the same width in both groups.
	width := -1
	titles := 0
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		if line == "native" || line == "software" {
			titles++
			continue
		}
		if !strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "|") {
			t.Errorf("unexpected line %q", line)
		}
		if width == -1 {
			width = len(line)
		} else if len(line) != width {
			t.Errorf("line %q has width %d, want %d", line, len(line), width)
		}
	}
	if titles != 2 {
		t.Errorf("got %d group titles, want 2:\n%s", titles, out)
	}
	for _, want := range []string{
		"| TwoWireInterface<TwoWire>,400kHz |",
		"|      20 |  281 |  285 |  296 |  347.4 |",
		"| SoftWire                         |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}
