package amazonads

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		offset     int
		pageSize   int
		wantOffset int
		wantDone   bool
	}{
		{
			name:     "no pagination block means done",
			body:     `{"campaigns":[]}`,
			offset:   0,
			pageSize: 100,
			wantDone: true,
		},
		{
			name:       "advances by page size",
			body:       `{"pagination":{"totalResults":250}}`,
			offset:     0,
			pageSize:   100,
			wantOffset: 100,
		},
		{
			name:       "advances again",
			body:       `{"pagination":{"totalResults":250}}`,
			offset:     100,
			pageSize:   100,
			wantOffset: 200,
		},
		{
			name:     "window reaches total",
			body:     `{"pagination":{"totalResults":250}}`,
			offset:   200,
			pageSize: 100,
			wantDone: true,
		},
		{
			name:     "total exactly offset plus page size",
			body:     `{"pagination":{"totalResults":200}}`,
			offset:   100,
			pageSize: 100,
			wantDone: true,
		},
		{
			name:     "empty result set",
			body:     `{"pagination":{"totalResults":0}}`,
			offset:   0,
			pageSize: 100,
			wantDone: true,
		},
		{
			name:     "missing totalResults treated as zero",
			body:     `{"pagination":{}}`,
			offset:   0,
			pageSize: 100,
			wantDone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := &PageCursor{Offset: tt.offset, PageSize: tt.pageSize}
			next := NextPage([]byte(tt.body), cur)

			if tt.wantDone {
				assert.Nil(t, next)
				return
			}
			require.NotNil(t, next)
			assert.Equal(t, tt.wantOffset, next.Offset)
			assert.Equal(t, tt.pageSize, next.PageSize)
		})
	}
}

func TestNextPage_OffsetsMonotonic(t *testing.T) {
	body := []byte(`{"pagination":{"totalResults":1000}}`)
	cur := NewPageCursor(100)

	prev := -1
	for cur != nil {
		require.Greater(t, cur.Offset, prev)
		prev = cur.Offset
		cur = NextPage(body, cur)
	}
	assert.Equal(t, 900, prev)
}

func TestNextPage_Property(t *testing.T) {
	// next is nil exactly when totalResults <= offset + pageSize.
	for _, total := range []int{0, 1, 99, 100, 101, 250, 1000} {
		for _, offset := range []int{0, 100, 900} {
			body := fmt.Sprintf(`{"pagination":{"totalResults":%d}}`, total)
			cur := &PageCursor{Offset: offset, PageSize: 100}
			next := NextPage([]byte(body), cur)

			if total <= offset+100 {
				assert.Nil(t, next, "total=%d offset=%d", total, offset)
			} else {
				require.NotNil(t, next, "total=%d offset=%d", total, offset)
				assert.Equal(t, offset+100, next.Offset)
			}
		}
	}
}
