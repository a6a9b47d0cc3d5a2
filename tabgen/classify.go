// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabgen

import (
	"path"
	"regexp"
	"strings"
)

// A classifier maps variant labels to group names using an ordered
// list of rules.
type classifier struct {
	rules []compiledRule
	def   string
}

type compiledRule struct {
	match func(label string) bool
	group string
}

// newClassifier compiles the rules of c. c must be valid.
func newClassifier(c *Config) *classifier {
	cl := &classifier{def: c.defaultGroup()}
	for _, r := range c.Rules {
		pat := r.Pattern
		var match func(string) bool
		switch r.kind() {
		case MatchPrefix:
			match = func(l string) bool { return strings.HasPrefix(l, pat) }
		case MatchSuffix:
			match = func(l string) bool { return strings.HasSuffix(l, pat) }
		case MatchSubstring:
			match = func(l string) bool { return strings.Contains(l, pat) }
		case MatchExact:
			match = func(l string) bool { return l == pat }
		case MatchRegexp:
			match = regexp.MustCompile(pat).MatchString
		case MatchGlob:
			match = func(l string) bool {
				ok, _ := path.Match(pat, l)
				return ok
			}
		}
		cl.rules = append(cl.rules, compiledRule{match, r.Group})
	}
	return cl
}

// group returns the group of label: the group of the first matching
// rule, or the default group.
func (cl *classifier) group(label string) string {
	for _, r := range cl.rules {
		if r.match(label) {
			return r.group
		}
	}
	return cl.def
}

// Classify returns the group c assigns to label. c must be valid.
func (c *Config) Classify(label string) string {
	return newClassifier(c).group(label)
}
