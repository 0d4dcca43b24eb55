package v1

import (
	"errors"
	"net/url"
	"strconv"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Pagination struct {
	Page       uint64 `json:"page"`
	Limit      uint64 `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

// parsePagination reads the 1-based page and the page size from the query string.
func parsePagination(q url.Values) (Pagination, error) {
	p := Pagination{Page: 1, Limit: defaultLimit}

	if s := q.Get("page"); s != "" {
		page, err := strconv.ParseUint(s, 10, 64)
		if err != nil || page == 0 {
			return Pagination{}, errors.New("invalid page")
		}
		p.Page = page
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.ParseUint(s, 10, 64)
		if err != nil || limit < 1 || limit > maxLimit {
			return Pagination{}, errors.New("invalid limit, must be in [1;100]")
		}
		p.Limit = limit
	}

	return p, nil
}

func (p Pagination) Offset() uint64 {
	return (p.Page - 1) * p.Limit
}

func (p Pagination) WithTotal(total int) Pagination {
	p.Total = total
	p.TotalPages = (total + int(p.Limit) - 1) / int(p.Limit)
	return p
}
