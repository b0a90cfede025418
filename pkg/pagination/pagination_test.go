package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultLimit},
		{-3, 5, 1, 5},
		{2, 500, 2, MaxLimit},
		{4, 25, 4, 25},
	}
	for _, tt := range tests {
		p := New(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p.Page)
		assert.Equal(t, tt.wantLimit, p.Limit)
	}
	assert.Equal(t, 75, New(4, 25).Offset())
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(New(1, 10), 0)
	assert.Equal(t, Meta{CurrentPage: 1, PerPage: 10}, m)

	m = NewMeta(New(2, 10), 21)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNextPage)
	assert.True(t, m.HasPrevPage)

	m = NewMeta(New(3, 10), 21)
	assert.False(t, m.HasNextPage)
}

func TestSortClause(t *testing.T) {
	s := Sort{Allowed: []string{"tanggal", "harga"}, DefaultField: "created_at", DefaultOrder: "DESC"}

	assert.Equal(t, "tanggal ASC", s.Clause("tanggal", "asc"))
	assert.Equal(t, "harga DESC", s.Clause("harga", ""))
	assert.Equal(t, "created_at DESC", s.Clause("harga; DROP TABLE x", "ASC; --"))
	assert.Equal(t, "created_at ASC", s.Clause("", " asc "))

	asc := Sort{Allowed: []string{"kode"}, DefaultField: "kode", DefaultOrder: "ASC"}
	assert.Equal(t, "kode ASC", asc.Clause("kode", "sideways"))
}
