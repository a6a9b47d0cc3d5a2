// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "fmt"

// MicrosFactor returns the multiplicative factor converting a value
// in unit to microseconds, the unit tables are computed in. Recognized
// units are "ns", "us" (also "µs" and "μs"), "ms", and "s" (also
// "sec"). The empty unit means microseconds.
func MicrosFactor(unit string) (float64, error) {
	switch unit {
	case "", "us", "µs", "μs":
		return 1, nil
	case "ns":
		return 1e-3, nil
	case "ms":
		return 1e3, nil
	case "s", "sec":
		return 1e6, nil
	}
	return 0, fmt.Errorf("unknown time unit %q", unit)
}
