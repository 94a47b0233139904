// Package slots decides which page numbers are shown in a page-selector bar
// of limited width.
package slots

import (
	"math"
	"slices"
	"sort"
)

// Steps are the distances from the current page that slots may jump to.
// Larger slot budgets use more of the small steps.
var Steps = []int{1, 2, 10, 20, 50, 100, 500, 1000, 2000, 4000}

// Tier is the estimated width of one slot while the last page is at most
// MaxPage.
type Tier struct {
	MaxPage int `json:"maxPage" jsonschema:"title=Max Page,minimum=1" validate:"gt=0"`
	Width   int `json:"width"   jsonschema:"title=Width,minimum=1"    validate:"gt=0"`
}

// DefaultTiers estimate slot widths in terminal cells: the digits, one cell
// of padding on each side and a separator.
func DefaultTiers() []Tier {
	return []Tier{
		{MaxPage: 9, Width: 4},
		{MaxPage: 99, Width: 5},
		{MaxPage: 999, Width: 6},
		{MaxPage: 9999, Width: 7},
		{MaxPage: math.MaxInt, Width: 8},
	}
}

// Plan is the set of pages to render. Pages always contains 1 and the last
// page and is strictly increasing. It contains Current unless no dynamic
// slot fits.
type Plan struct {
	Current int
	Pages   []int
}

// Last returns the last page of the plan.
func (p Plan) Last() int {
	if len(p.Pages) == 0 {
		return 1
	}

	return p.Pages[len(p.Pages)-1]
}

// Allocator turns an available width into a [Plan].
type Allocator struct {
	tiers []Tier
}

// NewAllocator creates an [Allocator] from tiers. The tiers are sorted by
// MaxPage; with no tiers [DefaultTiers] are used.
func NewAllocator(tiers []Tier) *Allocator {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}

	sorted := slices.Clone(tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MaxPage < sorted[j].MaxPage })

	return &Allocator{tiers: sorted}
}

// SlotWidth returns the estimated width of one slot when lastPage is the
// largest page number that can be shown.
func (a *Allocator) SlotWidth(lastPage int) int {
	for _, t := range a.tiers {
		if lastPage <= t.MaxPage {
			return max(t.Width, 1)
		}
	}

	return max(a.tiers[len(a.tiers)-1].Width, 1)
}

// Count returns how many dynamic slots fit into availableWidth in addition
// to the first and last page. It is never negative.
func (a *Allocator) Count(lastPage, availableWidth int) int {
	w := a.SlotWidth(lastPage)

	remaining := availableWidth - 2*w
	if remaining <= 0 {
		return 0
	}

	return remaining / w
}

// Plan allocates slots for the given width and builds the page list.
func (a *Allocator) Plan(current, lastPage, availableWidth int) Plan {
	lastPage = max(lastPage, 1)
	current = min(max(current, 1), lastPage)

	return Plan{
		Current: current,
		Pages:   Build(current, lastPage, a.Count(lastPage, availableWidth)),
	}
}

// Increments returns the steps used for a budget of slotCount slots: a step
// of one, followed by the largest remaining steps.
func Increments(slotCount int) []int {
	if slotCount <= 0 {
		return nil
	}

	n := min(slotCount, len(Steps))

	return append([]int{1}, Steps[len(Steps)-(n-1):]...)
}

// Build returns the page numbers to show around current. The first and
// last page are always included; at most slotCount other pages are added,
// current being one of them.
func Build(current, last, slotCount int) []int {
	last = max(last, 1)
	current = min(max(current, 1), last)

	if slotCount <= 0 {
		return normalize([]int{1, last}, last)
	}

	if last <= slotCount+2 {
		pages := make([]int, last)
		for i := range pages {
			pages[i] = i + 1
		}

		return pages
	}

	steps := Increments(slotCount)
	backCount := slotCount / 2
	forwardCount := max(slotCount-backCount-1, 0)

	back := make([]int, 0, backCount)
	for _, step := range steps {
		if len(back) >= backCount {
			break
		}

		p := roundClean(current-step, step)
		if p < 2 {
			break
		}

		back = append(back, p)
	}

	forward := make([]int, 0, forwardCount)
	for _, step := range steps {
		if len(forward) >= forwardCount {
			break
		}

		p := roundClean(current+step, step)
		if p >= last {
			break
		}

		forward = append(forward, p)
	}

	slices.Reverse(back)

	pages := make([]int, 0, len(back)+len(forward)+3)
	pages = append(pages, 1)
	pages = append(pages, back...)
	pages = append(pages, current)
	pages = append(pages, forward...)
	pages = append(pages, last)

	return normalize(pages, last)
}

// roundClean rounds page to the leading-digit precision of step, so that
// jumps land on human-friendly numbers. Steps below ten are exact.
func roundClean(page, step int) int {
	if step < 10 {
		return page
	}

	unit := 1
	for unit*10 <= step {
		unit *= 10
	}

	return int(math.Round(float64(page)/float64(unit))) * unit
}

// normalize sorts pages, drops duplicates and anything outside [1, last].
func normalize(pages []int, last int) []int {
	out := slices.DeleteFunc(pages, func(p int) bool {
		return p < 1 || p > last
	})

	slices.Sort(out)

	return slices.Compact(out)
}
