// Package listq translates client-controlled list requests (free-text
// search, per-field filters, sorting, pagination) into SQL predicates via an
// explicit per-entity field registry.
//
// Everything here is total: filter maps and sort fields arrive straight from
// query parameters, so unknown fields and unparsable values are skipped, not
// errored. Partial degradation of a search is acceptable; a crash is not.
package listq

import (
	"net/url"
	"strconv"
	"strings"
)

// Page size bounds enforced server-side regardless of what the client asks
// for.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Request is a structured list request. Constructed per request, never
// persisted.
type Request struct {
	Page    int               // 0-indexed, clamped to >= 0
	Size    int               // clamped into [1, MaxPageSize]
	Search  string            // free-text term, empty means no search predicate
	SortBy  string            // field name, validated against the registry
	SortDir string            // "asc" or "desc", anything else means asc
	Filters map[string]string // field -> raw filter value
}

// ParseRequest builds a Request from URL query parameters. List endpoints
// accept page, size, search, sortBy, sortDir and filters[<field>]=<value>.
func ParseRequest(values url.Values) Request {
	req := Request{
		Page:    parseIntDefault(values.Get("page"), 0),
		Size:    parseIntDefault(values.Get("size"), DefaultPageSize),
		Search:  strings.TrimSpace(values.Get("search")),
		SortBy:  strings.TrimSpace(values.Get("sortBy")),
		SortDir: strings.TrimSpace(values.Get("sortDir")),
		Filters: map[string]string{},
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		// filters[active]=true style keys
		if strings.HasPrefix(key, "filters[") && strings.HasSuffix(key, "]") {
			field := key[len("filters[") : len(key)-1]
			if field != "" {
				req.Filters[field] = vals[0]
			}
		}
	}

	return req
}

// PageNumber returns the requested page clamped to >= 0.
func (r Request) PageNumber() int {
	if r.Page < 0 {
		return 0
	}
	return r.Page
}

// PageSize returns the requested size clamped into [1, MaxPageSize].
func (r Request) PageSize() int {
	if r.Size <= 0 {
		return DefaultPageSize
	}
	if r.Size > MaxPageSize {
		return MaxPageSize
	}
	return r.Size
}

// Offset returns the SQL offset for the clamped page and size.
func (r Request) Offset() int {
	return r.PageNumber() * r.PageSize()
}

// Ascending reports the sort direction; anything but "desc" sorts ascending.
func (r Request) Ascending() bool {
	return !strings.EqualFold(r.SortDir, "desc")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
