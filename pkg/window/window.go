// Package window computes which contiguous range of records backs a page.
package window

import (
	"fmt"

	"github.com/macropower/chainview/pkg/params"
)

// Window is the half-open position range [End, Start) of the records shown
// on one page. Records are ordered newest-first, so Start >= End for any
// page inside the data.
type Window struct {
	Start int
	End   int
}

// Compute returns the window for the page described by p. The upper bound
// caps p.End; a negative upper bound leaves p.End as is.
func Compute(p params.Parameters, upperBound int) Window {
	end := p.End
	if upperBound >= 0 {
		end = min(end, upperBound)
	}

	rows := max(p.Rows, 1)
	page := max(p.Page, 0)

	if p.Order == params.OrderAsc {
		lo := p.Start + page*rows

		return Window{Start: min(lo+rows, end), End: lo}
	}

	start := end - page*rows

	return Window{Start: start, End: max(start-rows, p.Start)}
}

// Empty reports whether the window selects no records. Pages past the last
// page produce empty windows.
func (w Window) Empty() bool {
	return w.Start <= w.End || w.Start <= 0
}

// Len returns the number of records in the window.
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}

	return w.Start - max(w.End, 0)
}

// Heights returns the inclusive bounds of the window, lowest first.
// ok is false for an empty window.
func (w Window) Heights() (lo, hi int, ok bool) {
	if w.Empty() {
		return 0, 0, false
	}

	return max(w.End, 0), w.Start - 1, true
}

// Contains reports whether position pos is inside the window.
func (w Window) Contains(pos int) bool {
	return !w.Empty() && pos >= w.End && pos < w.Start
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.End, w.Start)
}

// TotalPages returns the number of pages needed for total records. There is
// always at least one page.
func TotalPages(total, rows int) int {
	if total <= 0 || rows <= 0 {
		return 1
	}

	return (total + rows - 1) / rows
}
