package pagination_test

import (
	"strings"
	"testing"

	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/stretchr/testify/assert"
)

func render(tokens []pagination.Token) string {
	parts := make([]string, len(tokens))
	for i, tk := range tokens {
		parts[i] = tk.String()
	}
	return strings.Join(parts, " ")
}

func TestWindow_SmallTotalsShowEveryPage(t *testing.T) {
	for total := 1; total <= 7; total++ {
		for current := 1; current <= total; current++ {
			tokens := pagination.Window(current, total)
			assert.Len(t, tokens, total)
			for i, tk := range tokens {
				assert.False(t, tk.Ellipsis)
				assert.Equal(t, i+1, tk.Page)
			}
		}
	}
}

func TestWindow_LargeTotals(t *testing.T) {
	cases := []struct {
		current, total int
		want           string
	}{
		{1, 10, "1 2 ... 10"},
		{2, 10, "1 2 3 ... 10"},
		{3, 10, "1 2 3 4 ... 10"},
		{4, 10, "1 ... 3 4 5 ... 10"},
		{5, 10, "1 ... 4 5 6 ... 10"},
		{8, 10, "1 ... 7 8 9 10"},
		{9, 10, "1 ... 8 9 10"},
		{10, 10, "1 ... 9 10"},
		{4, 8, "1 ... 3 4 5 ... 8"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, render(pagination.Window(tc.current, tc.total)), "current=%d total=%d", tc.current, tc.total)
	}
}

func TestWindow_InteriorHasSevenTokens(t *testing.T) {
	for total := 8; total <= 40; total++ {
		for current := 4; current <= total-3; current++ {
			tokens := pagination.Window(current, total)
			assert.Len(t, tokens, 7)
			assert.Equal(t, 1, tokens[0].Page)
			assert.Equal(t, total, tokens[len(tokens)-1].Page)
		}
	}
}

func TestWindow_FirstAndLastAlwaysPresent(t *testing.T) {
	for total := 8; total <= 30; total++ {
		for current := 1; current <= total; current++ {
			tokens := pagination.Window(current, total)
			assert.Equal(t, 1, tokens[0].Page)
			assert.Equal(t, total, tokens[len(tokens)-1].Page)
		}
	}
}

func TestNew_Clamps(t *testing.T) {
	c := pagination.New(9, 3)
	assert.Equal(t, 3, c.Current)
	assert.False(t, c.HasNext())
	assert.True(t, c.HasPrev())
	assert.Equal(t, 2, c.Prev())

	c = pagination.New(0, 0)
	assert.Equal(t, 1, c.Current)
	assert.Equal(t, 1, c.Total)
	assert.False(t, c.HasPrev())
	assert.False(t, c.HasNext())
}

func TestInRange(t *testing.T) {
	c := pagination.New(2, 5)
	for _, p := range []int{-1, 0, 6, 100} {
		assert.False(t, c.InRange(p), "page %d", p)
	}
	for p := 1; p <= 5; p++ {
		assert.True(t, c.InRange(p))
	}
}

func TestSlice(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	assert.Equal(t, 3, pagination.Pages(len(items), 10))
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, pagination.Slice(items, 2, 10))
	assert.Equal(t, []int{20, 21, 22}, pagination.Slice(items, 3, 10))
	assert.Equal(t, []int{20, 21, 22}, pagination.Slice(items, 9, 10))
	assert.Len(t, pagination.Slice([]int{}, 1, 10), 0)
}
