package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage_Defaults(t *testing.T) {
	tests := []struct {
		page, limit int64
		want        Page
	}{
		{0, 0, Page{Number: 1, Limit: 50}},
		{-3, -1, Page{Number: 1, Limit: 50}},
		{2, 10, Page{Number: 2, Limit: 10}},
		{1, 50, Page{Number: 1, Limit: 50}},
		{1, 51, Page{Number: 1, Limit: 50}},
		{1, 1000, Page{Number: 1, Limit: 50}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPage(tt.page, tt.limit), "page=%d limit=%d", tt.page, tt.limit)
	}
}

func TestPage_Window(t *testing.T) {
	tests := []struct {
		name       string
		page       Page
		total      uint64
		wantOffset uint64
		wantOK     bool
	}{
		{"first page", Page{1, 10}, 11, 0, true},
		{"second page", Page{2, 10}, 11, 10, true},
		{"past end", Page{3, 10}, 11, 0, false},
		{"exact end", Page{2, 10}, 10, 0, false},
		{"empty log", Page{1, 50}, 0, 0, false},
		{"huge page", Page{1 << 63, 50}, 11, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, ok := tt.page.Window(tt.total)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOffset, off)
		})
	}
}
