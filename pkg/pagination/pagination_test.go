package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClampsParams(t *testing.T) {
	p := &PaginationParams{Page: -3, PerPage: 500}
	p.Validate()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, maxPerPage, p.PerPage)

	p = &PaginationParams{Page: 2, PerPage: 0}
	p.Validate()
	assert.Equal(t, defaultPerPage, p.PerPage)
	assert.Equal(t, defaultPerPage, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pag := NewPagination(2, 10, 35)

	assert.Equal(t, 4, pag.TotalPages)
	assert.True(t, pag.HasNext)
	assert.True(t, pag.HasPrev)

	last := NewPagination(4, 10, 35)
	assert.False(t, last.HasNext)
}

func TestNewPaginatedResultNeverNil(t *testing.T) {
	res := NewPaginatedResult[int](nil, NewPagination(1, 15, 0))
	assert.NotNil(t, res.Items)
	assert.Len(t, res.Items, 0)
}
