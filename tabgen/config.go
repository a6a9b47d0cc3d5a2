// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabgen

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// A Column identifies one rendered column of a Table.
type Column string

const (
	ColLabel   Column = "label"
	ColSamples Column = "samples"
	ColMin     Column = "min"
	ColAvg     Column = "avg"
	ColMax     Column = "max"
	ColRate    Column = "rate"

	ColFlash      Column = "flash"
	ColRAM        Column = "ram"
	ColFlashDelta Column = "flash_delta"
	ColRAMDelta   Column = "ram_delta"
)

// DefaultColumns is the column set of timing tables used when
// Config.Columns is empty.
var DefaultColumns = []Column{ColLabel, ColSamples, ColMin, ColAvg, ColMax, ColRate}

// DefaultMemoryColumns is the column set of memory tables used when
// Config.Columns is empty. The delta columns are dropped if
// Config.Baseline is empty.
var DefaultMemoryColumns = []Column{ColLabel, ColFlash, ColRAM, ColFlashDelta, ColRAMDelta}

var defaultHeaders = map[Column]string{
	ColLabel:   "variant",
	ColSamples: "samples",
	ColMin:     "min",
	ColAvg:     "avg",
	ColMax:     "max",
	ColRate:    "rate",

	ColFlash:      "flash",
	ColRAM:        "ram",
	ColFlashDelta: "flash delta",
	ColRAMDelta:   "ram delta",
}

// A Kind is the kind of capture a Table is built from.
type Kind int

const (
	// Timing tables hold elapsed times and derived rates.
	Timing Kind = iota
	// Memory tables hold flash and RAM sizes.
	Memory
)

func (k Kind) String() string {
	if k == Memory {
		return "memory"
	}
	return "timing"
}

// allowed reports whether col may appear in a table of kind k.
func (k Kind) allowed(col Column) bool {
	switch col {
	case ColLabel:
		return true
	case ColSamples, ColMin, ColAvg, ColMax, ColRate:
		return k == Timing
	case ColFlash, ColRAM, ColFlashDelta, ColRAMDelta:
		return k == Memory
	}
	return false
}

// Match kinds of a Rule.
const (
	MatchPrefix    = "prefix"
	MatchSuffix    = "suffix"
	MatchSubstring = "substring"
	MatchExact     = "exact"
	MatchRegexp    = "regexp"
	MatchGlob      = "glob"
)

// A Rule assigns the variants whose label matches Pattern to Group.
type Rule struct {
	// Match is how Pattern is compared against a label. It is one
	// of the Match* constants. The empty string means MatchPrefix.
	Match string `yaml:"match,omitempty"`

	Pattern string `yaml:"pattern"`
	Group   string `yaml:"group"`
}

func (r Rule) kind() string {
	if r.Match == "" {
		return MatchPrefix
	}
	return r.Match
}

// Decimals gives the number of digits rendered after the decimal
// point.
type Decimals struct {
	Timing int `yaml:"timing"`
	Rate   int `yaml:"rate"`
}

// Config controls how samples are grouped, which derived values are
// computed, and how the table is rendered.
//
// The zero Config is not valid. Start from DefaultConfig and, for
// timing tables, set PayloadBits.
type Config struct {
	// PayloadBits is the amount of data moved by one benchmark
	// iteration. Memory tables ignore it.
	PayloadBits float64 `yaml:"payload_bits"`

	// ScaleFactor converts bits per microsecond into the reported
	// rate unit. For example, 1000 reports kbit/s.
	ScaleFactor float64 `yaml:"scale_factor"`

	// Rules classify variants into groups. The first matching rule
	// wins. Variants matching no rule go to DefaultGroup.
	Rules        []Rule `yaml:"grouping_rules"`
	DefaultGroup string `yaml:"default_group"`

	// GroupOrder lists groups to show first, in order. Other groups
	// follow in the order they are first seen.
	GroupOrder []string `yaml:"group_order"`

	// Order maps a group name to the labels to show first in that
	// group, in order. Other rows follow in the order they are
	// first seen.
	Order map[string][]string `yaml:"explicit_order"`

	// Columns is the set of rendered columns. It must include
	// ColLabel. If empty, DefaultColumns or DefaultMemoryColumns is
	// used.
	Columns []Column `yaml:"columns"`

	Decimals Decimals `yaml:"decimal_places"`

	// Headers overrides the header text of columns.
	Headers map[Column]string `yaml:"headers"`

	// NA is rendered in place of values that are not applicable,
	// such as the rate of a zero average.
	NA string `yaml:"na"`

	// Padding is the number of spaces before every column after
	// the first.
	Padding int `yaml:"padding"`

	// GeoMean adds a geometric mean row to the end of every group
	// of a timing table.
	GeoMean bool `yaml:"geomean"`

	// Baseline is the label of the row of a memory table that the
	// delta columns are computed against, typically a build with
	// none of the code under test.
	Baseline string `yaml:"baseline"`
}

// DefaultConfig returns a Config with default rendering settings and
// a scale factor of 1. The caller must still set PayloadBits.
func DefaultConfig() *Config {
	return &Config{
		ScaleFactor:  1,
		DefaultGroup: "other",
		Decimals:     Decimals{Timing: 0, Rate: 1},
		NA:           "n/a",
		Padding:      2,
	}
}

// A ConfigError reports an invalid Config. No table is produced for an
// invalid Config.
type ConfigError struct {
	// Field is the configuration key at fault, such as
	// "payload_bits" or "grouping_rules[2]".
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bad configuration: %s: %s", e.Field, e.Msg)
}

func configErrorf(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{field, fmt.Sprintf(format, args...)}
}

// Validate checks c for errors as the configuration of a timing
// table. If c is invalid, it returns a *ConfigError describing the
// first problem found.
func (c *Config) Validate() error {
	return c.validate(Timing)
}

// ValidateMemory is like Validate, but checks c as the configuration
// of a memory table, which needs no payload size.
func (c *Config) ValidateMemory() error {
	return c.validate(Memory)
}

func (c *Config) validate(kind Kind) error {
	positive := func(field string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return configErrorf(field, "must be a positive number, got %v", v)
		}
		return nil
	}
	if kind == Timing {
		if err := positive("payload_bits", c.PayloadBits); err != nil {
			return err
		}
		if err := positive("scale_factor", c.ScaleFactor); err != nil {
			return err
		}
	}

	type ruleKey struct{ kind, pattern string }
	seen := make(map[ruleKey]int)
	for i, r := range c.Rules {
		field := fmt.Sprintf("grouping_rules[%d]", i)
		if r.Pattern == "" {
			return configErrorf(field, "empty pattern")
		}
		if r.Group == "" {
			return configErrorf(field, "empty group")
		}
		switch r.kind() {
		case MatchPrefix, MatchSuffix, MatchSubstring, MatchExact:
		case MatchRegexp:
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return configErrorf(field, "%v", err)
			}
		case MatchGlob:
			if _, err := path.Match(r.Pattern, ""); err != nil {
				return configErrorf(field, "bad glob %q: %v", r.Pattern, err)
			}
		default:
			return configErrorf(field, "unknown match kind %q", r.Match)
		}
		k := ruleKey{r.kind(), r.Pattern}
		if j, ok := seen[k]; ok && c.Rules[j].Group != r.Group {
			return configErrorf(field, "%s %q is assigned to group %q by grouping_rules[%d] and to group %q", k.kind, k.pattern, c.Rules[j].Group, j, r.Group)
		} else if !ok {
			seen[k] = i
		}
	}

	if c.Decimals.Timing < 0 {
		return configErrorf("decimal_places.timing", "must not be negative, got %d", c.Decimals.Timing)
	}
	if c.Decimals.Rate < 0 {
		return configErrorf("decimal_places.rate", "must not be negative, got %d", c.Decimals.Rate)
	}
	if c.Padding < 0 {
		return configErrorf("padding", "must not be negative, got %d", c.Padding)
	}

	if len(c.Columns) > 0 {
		have := make(map[Column]bool)
		for _, col := range c.Columns {
			if _, ok := defaultHeaders[col]; !ok {
				return configErrorf("columns", "unknown column %q", col)
			}
			if !kind.allowed(col) {
				return configErrorf("columns", "column %q is not a %v table column", col, kind)
			}
			if (col == ColFlashDelta || col == ColRAMDelta) && c.Baseline == "" {
				return configErrorf("columns", "column %q needs a baseline", col)
			}
			if have[col] {
				return configErrorf("columns", "column %q listed more than once", col)
			}
			have[col] = true
		}
		if !have[ColLabel] {
			return configErrorf("columns", "missing %q column", ColLabel)
		}
	}
	var unknown []string
	for col := range c.Headers {
		if _, ok := defaultHeaders[col]; !ok {
			unknown = append(unknown, string(col))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return configErrorf("headers", "unknown column %q", unknown[0])
	}
	return nil
}

// columns returns the effective column set of a kind table.
func (c *Config) columns(kind Kind) []Column {
	switch {
	case len(c.Columns) > 0:
		return c.Columns
	case kind == Timing:
		return DefaultColumns
	case c.Baseline == "":
		return DefaultMemoryColumns[:3:3]
	}
	return DefaultMemoryColumns
}

// header returns the header text of col.
func (c *Config) header(col Column) string {
	if h, ok := c.Headers[col]; ok {
		return h
	}
	return defaultHeaders[col]
}

func (c *Config) defaultGroup() string {
	if c.DefaultGroup == "" {
		return "other"
	}
	return c.DefaultGroup
}

// UnmarshalYAML decodes a Config, starting from DefaultConfig so that
// omitted keys keep their default values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	p := plain(*DefaultConfig())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}
