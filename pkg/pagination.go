package pkg

import (
	"errors"
	"fmt"
)

const MaxPageSize = 500

var (
	ErrInvalidPage = errors.New("page must be greater than 0")
	ErrInvalidSize = fmt.Errorf("size must be between 1 and %d", MaxPageSize)
)

// PageBounds turns page/size into limit/offset for a result set of total rows.
// A set smaller than one page is returned whole, and the last page is always full.
func PageBounds(page, size, total int) (limit, offset int, err error) {
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if size < 1 || size > MaxPageSize {
		return 0, 0, ErrInvalidSize
	}

	limit = size
	if page-1 > total/size {
		// past the end, (page-1)*size could overflow
		offset = total
	} else {
		offset = (page - 1) * size
	}

	if total <= limit {
		limit = total
		offset = 0
	}

	if total-offset < limit {
		offset = total - limit
	}

	return limit, offset, nil
}
