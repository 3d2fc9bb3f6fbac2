// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"socialnova/internal/database"
	"socialnova/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxSearchResults caps every search query.
const MaxSearchResults = 50

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// wrapFind maps a lookup error onto the app error taxonomy.
func wrapFind(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// likePattern builds a case-folded substring pattern with LIKE wildcards escaped.
// Use with "name_fold LIKE ? ESCAPE '\'".
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(models.Fold(q)) + "%"
}

// OrderBy is a whitelisted ordering for generic collection queries.
type OrderBy struct {
	Column string
	Desc   bool
}

func applyOrder(db *gorm.DB, table string, order OrderBy) *gorm.DB {
	if order.Column == "" {
		order = OrderBy{Column: "id"}
	}
	col := clause.Column{Name: order.Column}
	// computed aliases are not table-qualified
	if !strings.HasSuffix(order.Column, "_count") {
		col.Table = table
	}
	db = db.Order(clause.OrderByColumn{Column: col, Desc: order.Desc})
	if order.Column != "id" {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}, Desc: order.Desc})
	}
	return db
}

// MaxPageSize is the largest number of rows a single page query returns.
const MaxPageSize = 100

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
