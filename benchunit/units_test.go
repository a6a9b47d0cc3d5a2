// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "testing"

func TestMicrosFactor(t *testing.T) {
	test := func(value float64, unit string, want float64) {
		t.Helper()
		factor, err := MicrosFactor(unit)
		if err != nil {
			t.Errorf("for %v %s, unexpected error %s", value, unit, err)
		} else if got := value * factor; got != want {
			t.Errorf("for %v %s, want %v us, got %v us", value, unit, want, got)
		}
	}

	test(120, "", 120)
	test(120, "us", 120)
	test(120, "µs", 120)
	test(120, "μs", 120)
	test(120000, "ns", 120)
	test(1.5, "ms", 1500)
	test(2, "s", 2e6)
	test(2, "sec", 2e6)

	if _, err := MicrosFactor("fortnights"); err == nil || err.Error() != `unknown time unit "fortnights"` {
		t.Errorf("got error %v, want unknown time unit", err)
	}
}
