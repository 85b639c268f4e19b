package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
)

// rowScope applies the filters, ordering and paging of q. Column names in
// q.Order are checked against allowed, so client input never reaches SQL
// unquoted.
func rowScope(q RowQuery, allowed map[string]bool) (func(*gorm.DB) *gorm.DB, error) {
	for _, o := range q.Order {
		if !allowed[o.Column] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("cannot order by %q", o.Column))
		}
	}
	return func(db *gorm.DB) *gorm.DB {
		if q.ID != "" {
			db = db.Where("id = ?", q.ID)
		}
		for _, o := range q.Order {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
		}
		return db.Scopes(pagination.Paginate(q.Page))
	}, nil
}

// insertRow creates row inside tx, resolving an existing row with the same
// id per res. exists reports whether such a row is stored and whether the
// caller owns it; merge overwrites an owned duplicate.
func insertRow(tx *gorm.DB, res Resolution, exists func(tx *gorm.DB) (found, owned bool, err error), create, merge func(tx *gorm.DB) error) error {
	found, owned, err := exists(tx)
	if err != nil {
		return err
	}
	if !found {
		return create(tx)
	}

	switch res {
	case ResolutionIgnoreDuplicates:
		return nil
	case ResolutionMergeDuplicates:
		if !owned {
			return apperrors.ErrForbidden
		}
		return merge(tx)
	default:
		return apperrors.ErrConflict
	}
}

// serviceError passes AppErrors through and wraps everything else as internal.
func serviceError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
