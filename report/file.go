// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/acebench/benchtab/sampfmt"
	"github.com/acebench/benchtab/tabgen"
)

// A File describes the reports for a set of platforms. It is usually
// loaded from YAML:
//
//	layout:
//	  fields: label,min,avg,max,samples
//	  delims: " /"
//	tables:
//	  payload_bits: 99
//	  scale_factor: 1000
//	  grouping_rules:
//	    - {pattern: TwoWire, group: native}
//	platforms:
//	  - name: avr
//	    input: avr.txt
//	  - name: esp8266
//	    input: esp8266.txt
//
// A platform may override the shared layout or tables. An override
// replaces the shared value as a whole. A platform whose layout has
// flash and ram fields produces a memory table, for which the tables
// settings need no payload size:
//
//	  - name: nano-memory
//	    input: nano-memory.txt
//	    layout: {fields: "label,flash,-,ram,-"}
//	    tables: {baseline: baseline}
type File struct {
	Layout    *LayoutSpec    `yaml:"layout"`
	Tables    *tabgen.Config `yaml:"tables"`
	Platforms []Platform     `yaml:"platforms"`
}

// A Platform is one capture of a File.
type Platform struct {
	// Name defaults to the base name of Input without its
	// extension.
	Name  string `yaml:"name"`
	Input string `yaml:"input"`

	Layout *LayoutSpec    `yaml:"layout"`
	Tables *tabgen.Config `yaml:"tables"`
}

// A LayoutSpec is the serialized form of a sampfmt.Layout.
type LayoutSpec struct {
	// Fields is a comma-separated list of field names, as accepted
	// by sampfmt.ParseLayout. If empty, the default field order is
	// used.
	Fields string `yaml:"fields"`

	Delims string `yaml:"delims"`

	// Comment is the comment prefix. If nil, "#" is used. An empty
	// string disables comments.
	Comment *string `yaml:"comment"`

	Begin string `yaml:"begin"`
	End   string `yaml:"end"`
	Unit  string `yaml:"unit"`
}

// Layout returns the sampfmt.Layout described by s.
func (s *LayoutSpec) Layout() (*sampfmt.Layout, error) {
	l := sampfmt.DefaultLayout()
	if s.Fields != "" {
		var err error
		if l, err = sampfmt.ParseLayout(s.Fields); err != nil {
			return nil, err
		}
	}
	l.Delims = s.Delims
	if s.Comment != nil {
		l.Comment = *s.Comment
	}
	l.Begin, l.End, l.Unit = s.Begin, s.End, s.Unit
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadFile reads and parses the report file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading report file")
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return f, nil
}

// ParseFile parses a YAML report file. Unknown keys are errors.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "parsing report file")
	}
	if len(f.Platforms) == 0 {
		return nil, errors.New("report file lists no platforms")
	}
	for i, p := range f.Platforms {
		if p.Input == "" {
			return nil, errors.Errorf("platform %d (%s) has no input", i, p.Name)
		}
	}
	return &f, nil
}

// Jobs returns one Job per platform of f. Relative inputs are resolved
// against baseDir.
func (f *File) Jobs(baseDir string) ([]Job, error) {
	jobs := make([]Job, 0, len(f.Platforms))
	for _, p := range f.Platforms {
		name := p.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(p.Input), filepath.Ext(p.Input))
		}

		spec := f.Layout
		if p.Layout != nil {
			spec = p.Layout
		}
		var layout *sampfmt.Layout
		if spec != nil {
			var err error
			if layout, err = spec.Layout(); err != nil {
				return nil, errors.Wrapf(err, "platform %s", name)
			}
		}

		cfg := f.Tables
		if p.Tables != nil {
			cfg = p.Tables
		}

		path := p.Input
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		jobs = append(jobs, Job{Name: name, Path: path, Layout: layout, Config: cfg})
	}
	return jobs, nil
}
