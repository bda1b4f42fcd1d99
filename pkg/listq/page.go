package listq

// Page is the envelope every list endpoint returns: the item slice for the
// requested page plus counting metadata.
type Page[T any] struct {
	Data            []T   `json:"data"`
	TotalRecords    int64 `json:"totalRecords"`
	FilteredRecords int64 `json:"filteredRecords"`
	CurrentPage     int   `json:"currentPage"`
	PageSize        int   `json:"pageSize"`
	TotalPages      int   `json:"totalPages"`
	HasNext         bool  `json:"hasNext"`
	HasPrevious     bool  `json:"hasPrevious"`
}

// NewPage assembles the page envelope. A page beyond the end carries an
// empty data slice with accurate metadata; it is not an error.
func NewPage[T any](data []T, total, filtered int64, page, size int) Page[T] {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	} else if size > MaxPageSize {
		size = MaxPageSize
	}

	totalPages := int((filtered + int64(size) - 1) / int64(size))

	if data == nil {
		data = []T{}
	}

	return Page[T]{
		Data:            data,
		TotalRecords:    total,
		FilteredRecords: filtered,
		CurrentPage:     page,
		PageSize:        size,
		TotalPages:      totalPages,
		HasNext:         page < totalPages-1,
		HasPrevious:     page > 0,
	}
}
