package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(2, 10, 25)
	start, end := p.PageBounds()
	require.Equal(t, 10, start)
	require.Equal(t, 20, end)
	require.Equal(t, 3, p.TotalPages)

	p = NewPagination(4, 10, 25)
	start, end = p.PageBounds()
	require.Equal(t, 25, start)
	require.Equal(t, 25, end)
}

func TestPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.PerPage)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 0, p.Offset())
}
