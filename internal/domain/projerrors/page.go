package projerrors

import "math"

// DefaultPageSize matches the listing's server-side default when the
// configuration leaves pagination.pageSize unset.
const DefaultPageSize = 20

// Page is one bounded window into a filtered collection plus the
// navigation metadata the listing renders.
type Page struct {
	Items       []*ProjectError `json:"data"`
	Number      int             `json:"page"`
	PageCount   int             `json:"totalPages"`
	HasPrevious bool            `json:"hasPrevious"`
	HasNext     bool            `json:"hasNext"`
}

// Paginate slices records into the requested 1-based page. Out-of-range
// page numbers are clamped, never rejected: below 1 clamps to the first
// page, past the end clamps to the last. An empty collection yields
// PageCount 0 and no items.
func Paginate(records []*ProjectError, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	count := int(math.Ceil(float64(len(records)) / float64(pageSize)))
	if page < 1 {
		page = 1
	}
	if page > count {
		// an empty collection still reports page 1
		if count == 0 {
			page = 1
		} else {
			page = count
		}
	}

	var items []*ProjectError
	if count > 0 {
		start := (page - 1) * pageSize
		end := start + pageSize
		if end > len(records) {
			end = len(records)
		}
		items = records[start:end]
	}

	return Page{
		Items:       items,
		Number:      page,
		PageCount:   count,
		HasPrevious: page > 1,
		HasNext:     page < count,
	}
}
