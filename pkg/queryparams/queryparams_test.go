package queryparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClampsValues(t *testing.T) {
	params := ListParams{Page: -5, PerPage: 500, OrderBy: "SIDEWAYS"}
	params.Validate()
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultPerPage, params.PerPage)
	assert.Equal(t, DefaultOrderBy, params.OrderBy)

	params = ListParams{Page: 3, PerPage: 50, OrderBy: "ASC"}
	params.Validate()
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.PerPage)
	assert.Equal(t, "asc", params.OrderBy)
}

func TestCalculateOffset(t *testing.T) {
	params := ListParams{Page: 1, PerPage: 20}
	assert.Equal(t, 0, params.CalculateOffset())

	params = ListParams{Page: 4, PerPage: 10}
	assert.Equal(t, 30, params.CalculateOffset())

	// Geçersiz değerlerde varsayılanlarla hesaplanır.
	params = ListParams{Page: 0, PerPage: 0}
	assert.Equal(t, 0, params.CalculateOffset())
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, 20))
	assert.Equal(t, 1, CalculateTotalPages(1, 20))
	assert.Equal(t, 1, CalculateTotalPages(20, 20))
	assert.Equal(t, 2, CalculateTotalPages(21, 20))
	assert.Equal(t, 0, CalculateTotalPages(100, 0))
}
