package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{5, 2, 3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		limit     int
		wantItems []int
		wantPages int
		wantMore  bool
		wantPage  int
	}{
		{"second page of five", 5, 2, 2, []int{2, 3}, 3, true, 2},
		{"last partial page", 5, 3, 2, []int{4}, 3, false, 3},
		{"first page", 5, 1, 2, []int{0, 1}, 3, true, 1},
		{"page past end", 5, 9, 2, []int{}, 3, false, 9},
		{"empty set", 0, 1, 12, []int{}, 0, false, 1},
		{"exact fit", 4, 2, 2, []int{2, 3}, 2, false, 2},
		{"page below one clamps", 3, 0, 2, []int{0, 1}, 2, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(seq(tt.total), tt.page, tt.limit)
			assert.Equal(t, tt.wantItems, got.Results)
			assert.NotNil(t, got.Results)
			assert.Equal(t, tt.total, got.Pagination.Total)
			assert.Equal(t, tt.wantPage, got.Pagination.Page)
			assert.Equal(t, tt.wantPages, got.Pagination.TotalPages)
			assert.Equal(t, tt.wantMore, got.Pagination.HasMore)
		})
	}
}

func TestAssemble_SliceSizeProperty(t *testing.T) {
	for total := 0; total <= 9; total++ {
		for limit := 1; limit <= 4; limit++ {
			pages := TotalPages(total, limit)
			for page := 1; page <= pages; page++ {
				got := Assemble(seq(total), page, limit)
				want := limit
				if rest := total - (page-1)*limit; rest < want {
					want = rest
				}
				assert.Len(t, got.Results, want)
				assert.Equal(t, page < pages, got.Pagination.HasMore)
			}
		}
	}
}

func TestAssemble_DoesNotAliasInput(t *testing.T) {
	items := seq(4)
	got := Assemble(items, 1, 2)
	got.Results[0] = 99
	assert.Equal(t, 0, items[0])
}

func TestAssembleOffset(t *testing.T) {
	got := AssembleOffset(seq(10), 4, 3)
	assert.Equal(t, []int{4, 5, 6}, got.Results)
	assert.Equal(t, 2, got.Pagination.Page)
	assert.Equal(t, 4, got.Pagination.TotalPages)
	assert.True(t, got.Pagination.HasMore)

	got = AssembleOffset(seq(10), 8, 3)
	assert.Equal(t, []int{8, 9}, got.Results)
	assert.False(t, got.Pagination.HasMore)

	got = AssembleOffset(seq(3), -1, 5)
	assert.Equal(t, []int{0, 1, 2}, got.Results)
}

func TestAssemble_HugePageIsEmpty(t *testing.T) {
	for _, limit := range []int{1, 12, 100} {
		page := math.MaxInt/limit + 1
		var res Result[int]
		assert.NotPanics(t, func() { res = Assemble(seq(2), page, limit) })
		assert.Empty(t, res.Results)
		assert.Equal(t, page, res.Pagination.Page)
		assert.Equal(t, 2, res.Pagination.Total)
		assert.False(t, res.Pagination.HasMore)
	}
}

func TestTotalPages_HugeLimit(t *testing.T) {
	assert.Equal(t, 1, TotalPages(2, math.MaxInt))
}

func TestAssembleOffset_HugeOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		limit    int
		wantPage int
	}{
		{"near max", math.MaxInt - 5, 12, (math.MaxInt-5)/12 + 1},
		{"max with limit one", math.MaxInt, 1, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result[int]
			assert.NotPanics(t, func() { res = AssembleOffset(seq(2), tt.offset, tt.limit) })
			assert.Empty(t, res.Results)
			assert.Equal(t, tt.wantPage, res.Pagination.Page)
			assert.False(t, res.Pagination.HasMore)
		})
	}
}
