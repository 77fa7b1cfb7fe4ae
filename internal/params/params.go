package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 24
	MaxLimit     = 60
)

// Pagination holds the requested page and, after ComputeMeta, the totals.
//
//	/products?page=2&limit=30 → Pagination{Limit:30, Page:2, Offset:30}
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination parses ?limit=...&page=... safely. Keys are case sensitive.
func ParsePagination(q url.Values) Pagination {
	return ParsePaginationWith(q, DefaultLimit, MaxLimit)
}

// ParsePaginationWith is ParsePagination with explicit bounds.
func ParsePaginationWith(q url.Values, def, max int) Pagination {
	p := Pagination{Limit: def, Page: 1}

	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case limit <= 0:
				p.Limit = def
			case limit > max:
				p.Limit = max
			default:
				p.Limit = limit
			}
		}
	}

	if pageStr := strings.TrimSpace(q.Get("page")); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}

var sorts = map[string]bool{"new": true, "price_asc": true, "price_desc": true}

// ShopQuery is the public product listing query: ?category=&type=&sort=.
type ShopQuery struct {
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
	Sort     string `json:"sort"`
	Pagination
}

// ParseShopQuery lower-cases the slugs and falls back to "new" for unknown sorts.
func ParseShopQuery(q url.Values) ShopQuery {
	sort := strings.ToLower(strings.TrimSpace(q.Get("sort")))
	if !sorts[sort] {
		sort = "new"
	}
	return ShopQuery{
		Category:   strings.ToLower(strings.TrimSpace(q.Get("category"))),
		Type:       strings.ToLower(strings.TrimSpace(q.Get("type"))),
		Sort:       sort,
		Pagination: ParsePagination(q),
	}
}
