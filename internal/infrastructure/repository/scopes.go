package repository

import (
	"context"
	"strings"

	domainRepo "github.com/sangkips/devis-eau-api/internal/domain/repository"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// dbFromContext returns the transaction stored in ctx by the transactor,
// or fallback when the call is not part of one.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a transaction manager over db
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

// WithinTransaction runs fn in a transaction. Nested calls join the outer one.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// col quotes a column name for the active dialect
func col(name string) clause.Column {
	return clause.Column{Name: name}
}

// Paginate returns a GORM scope applying page-based pagination
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			return db
		}
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// Search returns a GORM scope matching term case-insensitively against any
// of the given columns.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		exprs := make([]clause.Expression, len(columns))
		for i, c := range columns {
			exprs[i] = clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []interface{}{col(c), pattern}}
		}
		return db.Where(clause.Or(exprs...))
	}
}

// ActiveAt returns a GORM scope keeping rows whose end-date column is empty
// or after at.
func ActiveAt(endColumn string, at interface{}) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(? IS NULL OR ? > ?)", col(endColumn), col(endColumn), at)
	}
}
