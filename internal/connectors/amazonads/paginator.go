package amazonads

import "github.com/tidwall/gjson"

// PageCursor tracks the startIndex window for a list endpoint. Offsets only
// ever advance within one sync.
type PageCursor struct {
	Offset   int
	PageSize int
}

// NewPageCursor returns a cursor at the first page.
func NewPageCursor(pageSize int) *PageCursor {
	return &PageCursor{Offset: 0, PageSize: pageSize}
}

// NextPage computes the cursor for the following page from a list response.
// It returns nil when the response carries no pagination block (endpoints
// that answer in one shot) or when the current window reaches totalResults.
func NextPage(body []byte, cur *PageCursor) *PageCursor {
	pagination := gjson.GetBytes(body, "pagination")
	if !pagination.Exists() {
		return nil
	}

	total := pagination.Get("totalResults").Int()
	if int64(cur.Offset+cur.PageSize) >= total {
		return nil
	}

	return &PageCursor{Offset: cur.Offset + cur.PageSize, PageSize: cur.PageSize}
}
