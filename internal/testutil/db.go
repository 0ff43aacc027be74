// Package testutil provides shared database fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"campusbridge/internal/database"
	"campusbridge/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database. The pool is pinned to a
// single connection so every query sees the same in-memory schema.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an actor. Zero-valued fields get defaults.
func CreateUser(t testing.TB, db *gorm.DB, u models.User) *models.User {
	t.Helper()
	if u.Username == "" {
		var n int64
		require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
		u.Username = fmt.Sprintf("user%d", n+1)
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// CreatePost inserts a public post authored by authorID.
func CreatePost(t testing.TB, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:    "How hard is the first year?",
		Content:  "Looking for honest answers.",
		AuthorID: &authorID,
		Scope:    models.ScopePublic,
		Category: "admissions",
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateSchool inserts a school in the given review status.
func CreateSchool(t testing.TB, db *gorm.DB, name string, submitterID uint, status models.ReviewStatus) *models.School {
	t.Helper()
	s := &models.School{Name: name, Review: models.Review{SubmitterID: submitterID, ReviewStatus: status}}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateMajor inserts a major in the given review status.
func CreateMajor(t testing.TB, db *gorm.DB, name string, submitterID uint, status models.ReviewStatus) *models.Major {
	t.Helper()
	m := &models.Major{Name: name, Review: models.Review{SubmitterID: submitterID, ReviewStatus: status}}
	require.NoError(t, db.Create(m).Error)
	return m
}

// ReloadPost reads the post's current row.
func ReloadPost(t testing.TB, db *gorm.DB, id uint) *models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

// CountRows counts rows of model matching the optional condition.
func CountRows(t testing.TB, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
