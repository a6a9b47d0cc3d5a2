// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

// Rate returns the effective transfer rate of moving payloadBits in
// avgMicros microseconds, multiplied by scale. With scale 1000 the
// result is in kbit/s.
//
// A zero (or negative) average is a degenerate measurement rather than
// an error; Rate reports ok == false for it.
func Rate(payloadBits, avgMicros, scale float64) (rate float64, ok bool) {
	if avgMicros <= 0 {
		return 0, false
	}
	return payloadBits / avgMicros * scale, true
}
