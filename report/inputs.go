// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"strings"
)

// An Input is a capture file named on the command line.
type Input struct {
	// Label names the input's report.
	Label string
	Path  string
}

// ParseInputs parses command-line inputs of the form "path" or
// "label=path".
//
// An unlabeled input is labeled with its path. If the same unlabeled
// path is given more than once, each occurrence is labeled "path#N" so
// the reports can be told apart. Explicit labels are used exactly as
// given.
func ParseInputs(args []string) []Input {
	inputs := make([]Input, 0, len(args))
	labeled := make([]bool, 0, len(args))
	pathCount := make(map[string]int)
	for _, arg := range args {
		label, path, ok := strings.Cut(arg, "=")
		if !ok {
			label, path = arg, arg
			pathCount[path]++
		}
		inputs = append(inputs, Input{label, path})
		labeled = append(labeled, ok)
	}

	pathI := make(map[string]int)
	for i := range inputs {
		inp := &inputs[i]
		if labeled[i] || pathCount[inp.Path] == 1 {
			continue
		}
		inp.Label = fmt.Sprintf("%s#%d", inp.Path, pathI[inp.Path])
		pathI[inp.Path]++
	}
	return inputs
}
