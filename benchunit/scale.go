// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit formats benchmark measurements and the rates
// derived from them.
package benchunit

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Format formats val with exactly prec digits after the decimal
// point.
//
// Halfway values round away from zero using the shortest decimal
// representation of val, so 0.25 formats as "0.3" and 1.005 formats
// as "1.01" at the corresponding precisions. This matches what a
// reader computing by hand from the printed inputs would expect,
// unlike strconv, which rounds the binary value.
func Format(val float64, prec int) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return decimal.NewFromFloat(val).StringFixed(int32(prec))
}
