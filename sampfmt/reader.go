// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampfmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/acebench/benchtab/benchunit"
)

// A Reader reads a raw capture.
//
// Its API is modeled on bufio.Scanner. To minimize allocation, a
// Reader retains ownership of the *Sample it returns; a caller should
// Clone anything it needs to retain.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	br     *bufio.Reader
	err    error // current I/O error
	layout *Layout
	factor float64 // layout.Unit to microseconds

	// inSection is set while between Begin and End markers.
	inSection bool

	rec    Record
	sample Sample
	usage  Usage
	fields [][]byte

	fileName string
	line     int
}

var noResult = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// MaxLineLen is the length in bytes, including the line ending, of the
// longest line a Reader parses. Longer lines are reported as syntax
// errors and skipped.
const MaxLineLen = 64 << 10

// NewReader constructs a reader to parse a capture from r using
// layout. If layout is nil, DefaultLayout is used. fileName is used in
// error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string, layout *Layout) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, layout)
	return reader
}

// newSyntaxError returns a *SyntaxError at the Reader's current position.
func (r *Reader) newSyntaxError(msg string) *SyntaxError {
	return &SyntaxError{r.fileName, r.line, msg}
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string, layout *Layout) {
	r.br = bufio.NewReaderSize(ior, MaxLineLen)
	if fileName == "" {
		fileName = "<unknown>"
	}
	if layout == nil {
		layout = DefaultLayout()
	}
	r.err = nil
	r.layout = layout
	r.factor, r.err = benchunit.MicrosFactor(layout.Unit)
	r.inSection = false
	r.rec = nil
	r.sample = Sample{}
	r.usage = Usage{}
	r.fileName = fileName
	r.line = 0
}

// Scan advances the reader to the next record and reports whether a
// record was read.
// The caller should use the Result method to get the record.
// If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	r.rec = nil

	for {
		line, tooLong, err := r.readLine()
		if err != nil {
			if err != io.EOF {
				r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line+1, err)
			}
			return false
		}
		r.line++
		if tooLong {
			if r.layout.Begin != "" && !r.inSection {
				continue
			}
			r.rec = r.newSyntaxError("line too long")
			return true
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if l := r.layout; l.Begin != "" {
			if !r.inSection {
				r.inSection = string(line) == l.Begin
				continue
			}
			if l.End != "" && string(line) == l.End {
				r.inSection = false
				continue
			}
		}
		if r.layout.Comment != "" && bytes.HasPrefix(line, []byte(r.layout.Comment)) {
			continue
		}

		r.split(line)
		if !r.isData() {
			// Headers, prose, and other non-data lines.
			continue
		}
		var serr *SyntaxError
		if r.layout.Memory() {
			serr, r.rec = r.parseUsage(), &r.usage
		} else {
			serr, r.rec = r.parseSample(), &r.sample
		}
		if serr != nil {
			r.rec = serr
		}
		return true
	}
}

// readLine returns the next line of input without its line ending.
// If the line does not fit in MaxLineLen bytes, readLine consumes the
// whole line and returns tooLong instead. At the end of input it returns
// io.EOF.
func (r *Reader) readLine() (line []byte, tooLong bool, err error) {
	line, err = r.br.ReadSlice('\n')
	for err == bufio.ErrBufferFull {
		tooLong = true
		_, err = r.br.ReadSlice('\n')
	}
	if err == io.EOF && (len(line) > 0 || tooLong) {
		// Unterminated final line.
		err = nil
	}
	if tooLong {
		line = nil
	}
	return line, tooLong, err
}

// split splits line into r.fields according to the layout's
// delimiters.
func (r *Reader) split(line []byte) {
	isDelim := unicode.IsSpace
	custom := r.layout.Delims != ""
	if custom {
		delims := r.layout.Delims
		isDelim = func(c rune) bool { return strings.ContainsRune(delims, c) }
	}

	r.fields = r.fields[:0]
	for len(line) > 0 {
		var f []byte
		f, line = splitField(line, isDelim)
		if custom {
			f = bytes.TrimSpace(f)
			if len(f) == 0 {
				continue
			}
		}
		r.fields = append(r.fields, f)
	}
}

// field returns the column of the current line holding f, or nil if
// the line is too short.
func (r *Reader) field(f Field) []byte {
	for i, lf := range r.layout.Fields {
		if lf == f {
			if i < len(r.fields) {
				return r.fields[i]
			}
			return nil
		}
	}
	return nil
}

// isData reports whether the current line looks like a data line:
// more than half of its value columns start like a number. Lines that
// look like data but fail to parse are reported as syntax errors,
// while everything else, including prose that happens to mention a
// number, is silently skipped.
func (r *Reader) isData() bool {
	total, numeric := 0, 0
	for i, f := range r.layout.Fields {
		if f == FieldLabel || f == FieldSkip {
			continue
		}
		total++
		if i < len(r.fields) && looksNumeric(r.fields[i]) {
			numeric++
		}
	}
	return 2*numeric > total
}

func looksNumeric(x []byte) bool {
	if len(x) > 0 && (x[0] == '+' || x[0] == '-' || x[0] == '.') {
		x = x[1:]
	}
	return len(x) > 0 && '0' <= x[0] && x[0] <= '9'
}

// parseSample parses the current line's fields into r.sample.
func (r *Reader) parseSample() *SyntaxError {
	r.sample = Sample{fileName: r.fileName, line: r.line}

	label := r.field(FieldLabel)
	if len(label) == 0 {
		return r.newSyntaxError("missing label")
	}
	r.sample.Label = string(label)

	f := r.field(FieldSamples)
	if len(f) == 0 {
		return r.newSyntaxError("missing samples")
	}
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return r.newSyntaxError("parsing samples: " + err.(*strconv.NumError).Err.Error())
	}
	if n < 0 {
		return r.newSyntaxError("negative samples")
	}
	r.sample.Samples = n

	for _, tf := range []struct {
		field Field
		dst   *float64
	}{
		{FieldMin, &r.sample.Min},
		{FieldAvg, &r.sample.Avg},
		{FieldMax, &r.sample.Max},
	} {
		f := r.field(tf.field)
		if len(f) == 0 {
			return r.newSyntaxError("missing " + tf.field.String())
		}
		v, err := atof(f)
		if err != nil {
			return r.newSyntaxError("parsing " + tf.field.String() + ": " + err.(*strconv.NumError).Err.Error())
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r.newSyntaxError("parsing " + tf.field.String() + ": not a finite number")
		}
		if v < 0 {
			return r.newSyntaxError("negative " + tf.field.String())
		}
		*tf.dst = v * r.factor
	}

	if !(r.sample.Min <= r.sample.Avg && r.sample.Avg <= r.sample.Max) {
		return r.newSyntaxError("min/avg/max out of order")
	}
	return nil
}

// parseUsage parses the current line's fields into r.usage.
func (r *Reader) parseUsage() *SyntaxError {
	r.usage = Usage{fileName: r.fileName, line: r.line}

	label := r.field(FieldLabel)
	if len(label) == 0 {
		return r.newSyntaxError("missing label")
	}
	r.usage.Label = string(label)

	for _, mf := range []struct {
		field Field
		dst   *int64
	}{
		{FieldFlash, &r.usage.Flash},
		{FieldRAM, &r.usage.RAM},
	} {
		f := r.field(mf.field)
		if len(f) == 0 {
			return r.newSyntaxError("missing " + mf.field.String())
		}
		v, err := strconv.ParseInt(string(f), 10, 64)
		if err != nil {
			return r.newSyntaxError("parsing " + mf.field.String() + ": " + err.(*strconv.NumError).Err.Error())
		}
		if v < 0 {
			return r.newSyntaxError("negative " + mf.field.String())
		}
		*mf.dst = v
	}
	return nil
}

// Result returns the record that was just read by Scan. This is a
// *Sample for timing layouts, a *Usage for memory layouts, or a
// *SyntaxError indicating a parse error.
//
// Parse errors are non-fatal, so the caller can continue to call
// Scan.
//
// If this returns a *Sample or *Usage, the caller should not retain
// it, as it will be overwritten by the next call to Scan.
func (r *Reader) Result() Record {
	if r.rec == nil {
		return noResult
	}
	return r.rec
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every record of a timing capture from r. It returns
// the samples in input order and the syntax errors of lines that
// looked like data but could not be parsed. err is non-nil only if
// reading r failed or layout describes a memory capture.
func ReadAll(r io.Reader, fileName string, layout *Layout) (samples []*Sample, skipped []*SyntaxError, err error) {
	if layout != nil && layout.Memory() {
		return nil, nil, fmt.Errorf("%s: layout %s describes a memory capture", fileName, layout)
	}
	reader := NewReader(r, fileName, layout)
	for reader.Scan() {
		switch rec := reader.Result().(type) {
		case *Sample:
			samples = append(samples, rec.Clone())
		case *SyntaxError:
			skipped = append(skipped, rec)
		}
	}
	return samples, skipped, reader.Err()
}

// ReadUsage is like ReadAll, but reads a memory capture.
func ReadUsage(r io.Reader, fileName string, layout *Layout) (usages []*Usage, skipped []*SyntaxError, err error) {
	if layout == nil || !layout.Memory() {
		return nil, nil, fmt.Errorf("%s: layout does not describe a memory capture", fileName)
	}
	reader := NewReader(r, fileName, layout)
	for reader.Scan() {
		switch rec := reader.Result().(type) {
		case *Usage:
			usages = append(usages, rec.Clone())
		case *SyntaxError:
			skipped = append(skipped, rec)
		}
	}
	return usages, skipped, reader.Err()
}

// Parsing helpers.

// atof is a wrapper for strconv.ParseFloat that optimizes for
// numbers that are usually integers.
func atof(x []byte) (float64, error) {
	// Try parsing as an integer.
	var val int64
	for _, ch := range x {
		digit := ch - '0'
		if digit >= 10 {
			goto fail
		}
		if val > (math.MaxInt64-10)/10 {
			goto fail // avoid int64 overflow
		}
		val = (val * 10) + int64(digit)
	}
	return float64(val), nil

fail:
	// The fast path failed. Parse it as a float.
	return strconv.ParseFloat(string(x), 64)
}

// splitField consumes and returns the bytes of x up to the first
// delimiter as field, consumes the delimiters following the field,
// and then returns the remaining bytes of x.
func splitField(x []byte, isDelim func(rune) bool) (field, rest []byte) {
	// Collect non-delimiters into field.
	var i int
	for i < len(x) {
		c, n := rune(x[i]), 1
		if c >= utf8.RuneSelf {
			c, n = utf8.DecodeRune(x[i:])
		}
		if isDelim(c) {
			break
		}
		i += n
	}
	field, rest = x[:i], x[i:]

	// Strip delimiters from rest.
	for len(rest) > 0 {
		c, n := rune(rest[0]), 1
		if c >= utf8.RuneSelf {
			c, n = utf8.DecodeRune(rest)
		}
		if !isDelim(c) {
			break
		}
		rest = rest[n:]
	}
	return
}
