// Package pagination computes page windows and prev/next state for paged
// lists.
package pagination

import "strconv"

// maxFullWindow is the largest page count rendered without ellipses.
const maxFullWindow = 7

// Token is one entry of a page window: a page number or an ellipsis.
type Token struct {
	Page     int
	Ellipsis bool
}

func (t Token) String() string {
	if t.Ellipsis {
		return "..."
	}
	return strconv.Itoa(t.Page)
}

// Window lists the page tokens for current out of total. Up to seven pages
// are all shown. Beyond that the first and last page always appear around a
// window of current-1..current+1, with an ellipsis where the window does not
// reach a boundary.
func Window(current, total int) []Token {
	if total < 1 {
		total = 1
	}
	current = clamp(current, total)

	if total <= maxFullWindow {
		out := make([]Token, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, Token{Page: p})
		}
		return out
	}

	out := []Token{{Page: 1}}
	if current > 3 {
		out = append(out, Token{Ellipsis: true})
	}
	start := max(2, current-1)
	end := min(total-1, current+1)
	for p := start; p <= end; p++ {
		out = append(out, Token{Page: p})
	}
	if current < total-2 {
		out = append(out, Token{Ellipsis: true})
	}
	return append(out, Token{Page: total})
}

// Controls is the clamped paging state of one rendered list.
type Controls struct {
	Current int
	Total   int
	Tokens  []Token
}

// New clamps current into [1, total]; a total below 1 is treated as 1.
func New(current, total int) Controls {
	if total < 1 {
		total = 1
	}
	current = clamp(current, total)
	return Controls{Current: current, Total: total, Tokens: Window(current, total)}
}

func (c Controls) HasPrev() bool { return c.Current > 1 }
func (c Controls) HasNext() bool { return c.Current < c.Total }
func (c Controls) Prev() int     { return max(1, c.Current-1) }
func (c Controls) Next() int     { return min(c.Total, c.Current+1) }

// InRange reports whether a page change to page should be acted on.
func (c Controls) InRange(page int) bool {
	return InRange(page, c.Total)
}

func InRange(page, total int) bool {
	return page >= 1 && page <= total
}

// Pages is the number of pages needed for n items.
func Pages(n, perPage int) int {
	if perPage < 1 || n <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// Slice returns page of items, perPage at a time. Out of range pages are
// clamped.
func Slice[T any](items []T, page, perPage int) []T {
	if perPage < 1 {
		return items
	}
	page = clamp(page, Pages(len(items), perPage))
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

func clamp(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
