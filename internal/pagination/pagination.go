// Package pagination implements limit/offset paging for row listings.
package pagination

import (
	"fmt"

	"gorm.io/gorm"
)

// MaxLimit caps a single page.
const MaxLimit = 1000

// PageRequest holds paging parameters parsed from query strings. A zero
// Limit returns every row.
type PageRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if req.Offset > 0 {
			db = db.Offset(req.Offset)
		}
		if req.Limit > 0 {
			db = db.Limit(req.Limit)
		}
		return db
	}
}

// ContentRange renders the Content-Range header for n rows returned at
// offset, e.g. "0-24/*", or "*/0" for an empty page.
func ContentRange(offset, n int) string {
	if n == 0 {
		return "*/0"
	}
	return fmt.Sprintf("%d-%d/*", offset, offset+n-1)
}
