package product

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name          string
		filter        Filter
		page          *Pagination
		wantWhere     string
		wantTail      string
		wantArgs      []any
		wantCountArgs []any
	}{
		{
			name:     "unfiltered_unpaginated",
			filter:   Filter{},
			wantTail: " FROM products ORDER BY created_at DESC, id DESC",
		},
		{
			name:          "category",
			filter:        Filter{Category: ptr("Electronics")},
			wantWhere:     " WHERE category = $1",
			wantTail:      " FROM products WHERE category = $1 ORDER BY created_at DESC, id DESC",
			wantArgs:      []any{"Electronics"},
			wantCountArgs: []any{"Electronics"},
		},
		{
			name:      "featured_only",
			filter:    Filter{FeaturedOnly: true},
			wantWhere: " WHERE featured = TRUE",
			wantTail:  " FROM products WHERE featured = TRUE ORDER BY created_at DESC, id DESC",
		},
		{
			name:     "paginated",
			filter:   Filter{},
			page:     &Pagination{Page: 3, Limit: 10},
			wantTail: " FROM products ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
			wantArgs: []any{10, 20},
		},
		{
			name:          "category_featured_paginated",
			filter:        Filter{Category: ptr("Home"), FeaturedOnly: true},
			page:          &Pagination{Page: 1, Limit: 5},
			wantWhere:     " WHERE category = $1 AND featured = TRUE",
			wantTail:      " FROM products WHERE category = $1 AND featured = TRUE ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
			wantArgs:      []any{"Home", 5, 0},
			wantCountArgs: []any{"Home"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := buildListQuery(tt.filter, tt.page)

			require.True(t, strings.HasPrefix(q.SQL, "SELECT "+productColumns))
			assert.Equal(t, tt.wantTail, strings.TrimPrefix(q.SQL, "SELECT "+productColumns))
			assert.Equal(t, "SELECT COUNT(*) FROM products"+tt.wantWhere, q.CountSQL)

			if diff := cmp.Diff(tt.wantArgs, q.Args); diff != "" {
				t.Errorf("page args mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCountArgs, q.CountArgs); diff != "" {
				t.Errorf("count args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildListQuery_ValuesAreNeverInterpolated(t *testing.T) {
	hostile := "x'; DROP TABLE products; --"
	q := buildListQuery(Filter{Category: &hostile}, &Pagination{Page: 1, Limit: 10})

	assert.NotContains(t, q.SQL, hostile)
	assert.NotContains(t, q.CountSQL, hostile)
	assert.Equal(t, hostile, q.Args[0])
	assert.Equal(t, hostile, q.CountArgs[0])
}

func TestBuildListQuery_PaginationDoesNotLeakIntoCountArgs(t *testing.T) {
	q := buildListQuery(Filter{Category: ptr("Clothing")}, &Pagination{Page: 2, Limit: 4})

	assert.Len(t, q.Args, 3)
	assert.Len(t, q.CountArgs, 1)
	assert.Equal(t, 4, q.Args[1])
	assert.Equal(t, 4, q.Args[2], "offset of page 2 with limit 4")
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, Pagination{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 45, Pagination{Page: 10, Limit: 5}.Offset())
}

func TestPage_TotalPages(t *testing.T) {
	assert.Equal(t, int64(0), Page{TotalCount: 0, Limit: 10}.TotalPages())
	assert.Equal(t, int64(1), Page{TotalCount: 10, Limit: 10}.TotalPages())
	assert.Equal(t, int64(2), Page{TotalCount: 11, Limit: 10}.TotalPages())
	assert.Equal(t, int64(0), Page{TotalCount: 11, Limit: 0}.TotalPages())
}
