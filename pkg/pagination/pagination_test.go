package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantPer    int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"custom", "page=3&per_page=10", 3, 10, 20},
		{"capped", "per_page=500", 1, 100, 0},
		{"garbage ignored", "page=abc&per_page=-4", 1, 20, 0},
		{"zero page ignored", "page=0", 1, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/orders?"+tt.query, nil)
			p := FromRequest(r)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPer, p.PerPage)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.wantPer, p.Limit())
		})
	}
}

func TestParams_TotalPages(t *testing.T) {
	p := Params{Page: 1, PerPage: 20}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, 0, Params{}.TotalPages(5))
}
