package client

import (
	"net/url"
	"strconv"
	"strings"
)

// PageQuery selects one page of a list endpoint. Sort uses the API's
// "field,direction" form, e.g. "rentalDate,desc".
type PageQuery struct {
	Page int
	Size int
	Sort string
}

// DefaultPageSize is used when a PageQuery leaves Size at zero.
const DefaultPageSize = 20

func (q PageQuery) values() url.Values {
	params := url.Values{}
	page := q.Page
	if page < 0 {
		page = 0
	}
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	if s := strings.TrimSpace(q.Sort); s != "" {
		params.Set("sort", s)
	}
	return params
}
