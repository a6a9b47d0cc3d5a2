// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texttab

import (
	"reflect"
	"strings"
	"testing"
)

func TestAlign(t *testing.T) {
	check := func(s string, a align, w int, want string) {
		t.Helper()
		got := a.lpad(s, w)
		if got != want {
			t.Errorf("want %q, got %q", want, got)
		}
	}

	check("abc", alignLeft, 10, "abc")
	check("abc", alignRight, 10, "       abc")
	check("abcd", alignRight, 2, "abcd")
	check("µs", alignRight, 4, "  µs")
}

func TestTable(t *testing.T) {
	tab := Table{Margin: " "}
	check := func(want string) {
		t.Helper()
		var gotBuf strings.Builder
		if err := tab.Format(&gotBuf); err != nil {
			t.Fatal(err)
		}
		got := gotBuf.String()
		if want != got {
			t.Errorf("want:\n%sgot:\n%s", want, got)
		}
		tab = Table{Margin: " "}
	}

	// Basic test.
	tab.Row().Cell("a").Cell("b").Cell("c")
	tab.Row().Cell("d").Cell("e").Cell("f")
	check("a b c\nd e f\n")

	// Padding. Lines have no trailing spaces.
	tab.Row().Cell("a").Cell("b").Cell("c")
	tab.Row().Cell("long").Cell("e").Cell("long")
	check("a    b c\nlong e long\n")

	// Alignment.
	tab.Row().Cell("a", Left).Cell("b", Right).Cell("c", Right)
	tab.Row().Cell("xxx").Cell("xxx").Cell("xxx")
	check("a     b   c\nxxx xxx xxx\n")

	// Empty cells.
	tab.Row().Cell("a").Cell("").Cell("c")
	tab.Row().Cell("d").Cell("e").Cell("f")
	check("a   c\nd e f\n")

	// Wider margins.
	tab.Margin = "  "
	tab.Row().Cell("a").Cell("b")
	tab.Row().Cell("c").Cell("d")
	check("a  b\nc  d\n")

	// Blank rows.
	tab.Row().Cell("a")
	tab.Row()
	tab.Row()
	tab.Row().Cell("b")
	check("a\n\n\nb\n")

	// Overflowing cells don't widen columns.
	tab.Row().Cell("section title", Overflow)
	tab.Row().Cell("a").Cell("b")
	check("section title\na b\n")

	// Spans don't widen columns either.
	tab.Row().Cell("a").Cell("b")
	tab.Row().Span(2, "abcdefg")
	check("a b\nabcdefg\n")

	// Right-aligned spans.
	tab.Row().Cell("abc").Cell("def")
	tab.Row().Span(2, "a", Right)
	check("abc def\n      a\n")

	// Filled spans cover margins.
	tab.Row().Cell("ab").Cell("c").Cell("de")
	tab.Row().Span(3, "", Fill('-'))
	check("ab c de\n-------\n")
}

func TestWidths(t *testing.T) {
	tab := Table{Margin: "  "}
	tab.Row().Cell("a whole lot of title", Overflow)
	tab.Row().Cell("variant").Cell("avg", Right)
	tab.Row().Span(2, "", Fill('-'))
	tab.Row().Cell("x").Cell("1000", Right)

	if got, want := tab.Widths(), []int{7, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Widths() = %v, want %v", got, want)
	}

	var buf strings.Builder
	tab.Format(&buf)
	want := "a whole lot of title\nvariant   avg\n-------------\nx        1000\n"
	if buf.String() != want {
		t.Errorf("want:\n%sgot:\n%s", want, buf.String())
	}
}
