package models

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 1000

	// MaxPage keeps (MaxPage-1)*MaxLimit within int64.
	MaxPage = math.MaxInt32
)

// ListParams carries pagination and the free-text search term of a listing.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps page and limit into their valid ranges.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

func (p ListParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p ListParams) TotalPages(total int64) int64 {
	if p.Limit < 1 {
		return 0
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}

// MatchesSearch reports whether any field contains the search term,
// ignoring case. An empty term matches everything.
func (p ListParams) MatchesSearch(fields ...string) bool {
	if p.Search == "" {
		return true
	}
	needle := strings.ToLower(p.Search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
