// Package repository provides the gorm data access layer.
package repository

import (
	"errors"
	"fmt"

	"campusbridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// incrementBy and decrementBy express counter changes in SQL so they never
// depend on a value read earlier in the transaction. Decrements clamp at 0.
func incrementBy(column string, n int64) clause.Expr {
	return gorm.Expr(column+" + ?", n)
}

func decrementBy(column string, n int64) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" >= ? THEN "+column+" - ? ELSE 0 END", n, n)
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

var subjectTables = map[models.SubjectKind]string{
	models.SubjectPost:        "posts",
	models.SubjectReply:       "replies",
	models.SubjectTestimonial: "testimonials",
}

func subjectTable(kind models.SubjectKind) (string, error) {
	table, ok := subjectTables[kind]
	if !ok {
		return "", models.NewValidationError(fmt.Sprintf("unknown subject kind %q", kind))
	}
	return table, nil
}

func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// deleteLikes removes every ledger entry of kind for the given subjects.
func deleteLikes(tx *gorm.DB, kind models.SubjectKind, subjectIDs []uint) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	return tx.Where("subject_kind = ? AND subject_id IN ?", kind, subjectIDs).
		Delete(&models.LikeEntry{}).Error
}

// Pagination bounds applied by every list query.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
