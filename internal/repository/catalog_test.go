package repository

import (
	"context"
	"testing"
	"time"

	"campusbridge/internal/models"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_CreateAndDuplicate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	schools := NewSchoolRepository(db)
	ctx := context.Background()

	s := &models.School{Name: "Lakeside University", Review: models.Review{SubmitterID: 1, ReviewStatus: models.ReviewPending}}
	require.NoError(t, schools.Create(ctx, s))
	assert.NotZero(t, s.ID)

	dup := &models.School{Name: "Lakeside University", Review: models.Review{SubmitterID: 2, ReviewStatus: models.ReviewPending}}
	err := schools.Create(ctx, dup)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = schools.GetByID(ctx, 404)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCatalogRepository_Transition(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	majors := NewMajorRepository(db)
	ctx := context.Background()

	m := testutil.CreateMajor(t, db, "Marine Biology", 3, models.ReviewPending)
	now := time.Now().UTC()

	got, err := majors.Transition(ctx, m.ID, func(r *models.Review) error {
		r.ReviewStatus = models.ReviewRejected
		r.RejectionReason = "duplicate of Biology"
		r.ReviewedAt = &now
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewRejected, got.ReviewStatus)

	reloaded, err := majors.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "duplicate of Biology", reloaded.RejectionReason)
	require.NotNil(t, reloaded.ReviewedAt)

	t.Run("apply error leaves row untouched", func(t *testing.T) {
		_, err := majors.Transition(ctx, m.ID, func(r *models.Review) error {
			r.ReviewStatus = models.ReviewApproved
			return models.NewValidationError("nope")
		})
		assert.True(t, models.IsCode(err, models.CodeValidation))
		reloaded, err := majors.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReviewRejected, reloaded.ReviewStatus)
	})

	t.Run("clearing the reason persists", func(t *testing.T) {
		_, err := majors.Transition(ctx, m.ID, func(r *models.Review) error {
			r.ReviewStatus = models.ReviewApproved
			r.RejectionReason = ""
			return nil
		})
		require.NoError(t, err)
		reloaded, err := majors.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReviewApproved, reloaded.ReviewStatus)
		assert.Empty(t, reloaded.RejectionReason)
	})
}

func TestCatalogRepository_UpdateFields(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	schools := NewSchoolRepository(db)
	ctx := context.Background()

	s := testutil.CreateSchool(t, db, "Hill College", 1, models.ReviewPending)
	testutil.CreateSchool(t, db, "Valley College", 1, models.ReviewApproved)

	updated, err := schools.UpdateFields(ctx, s.ID, map[string]interface{}{"Location": "Hilltown", "website": "https://hill.example"})
	require.NoError(t, err)
	assert.Equal(t, "Hilltown", updated.Location)
	assert.Equal(t, models.ReviewPending, updated.ReviewStatus)

	tests := []struct {
		name   string
		fields map[string]interface{}
		code   string
	}{
		{"review column", map[string]interface{}{"review_status": "approved"}, models.CodeValidation},
		{"unknown column", map[string]interface{}{"rank": 1}, models.CodeValidation},
		{"empty", map[string]interface{}{}, models.CodeValidation},
		{"name collision", map[string]interface{}{"name": "Valley College"}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schools.UpdateFields(ctx, s.ID, tt.fields)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}

	_, err = schools.UpdateFields(ctx, 999, map[string]interface{}{"name": "Ghost"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCatalogRepository_ListVisibility(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	schools := NewSchoolRepository(db)
	ctx := context.Background()

	testutil.CreateSchool(t, db, "Approved U", 1, models.ReviewApproved)
	testutil.CreateSchool(t, db, "Mine Pending", 2, models.ReviewPending)
	testutil.CreateSchool(t, db, "Theirs Pending", 3, models.ReviewPending)
	testutil.CreateSchool(t, db, "Theirs Rejected", 3, models.ReviewRejected)

	names := func(list []*models.School) []string {
		var out []string
		for _, s := range list {
			out = append(out, s.Name)
		}
		return out
	}

	viewer := uint(2)
	visible, err := schools.List(ctx, CatalogFilter{VisibleTo: &viewer})
	require.NoError(t, err)
	assert.Equal(t, []string{"Approved U", "Mine Pending"}, names(visible))

	all, err := schools.List(ctx, CatalogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	pending, err := schools.List(ctx, CatalogFilter{Status: models.ReviewPending})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mine Pending", "Theirs Pending"}, names(pending))
}
