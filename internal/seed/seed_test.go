package seed

import (
	"context"
	"testing"

	"campusbridge/internal/models"
	"campusbridge/internal/repository"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	return Options{
		NumUsers:          12,
		NumSchools:        3,
		NumMajors:         3,
		NumPosts:          15,
		MaxRepliesPerPost: 6,
		ShouldClean:       true,
		Seed:              42,
	}
}

func TestRun_CountersMatchSources(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	sum, err := NewSeeder(db, smallOptions()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, sum.Users)
	var admin models.User
	require.NoError(t, db.First(&admin, sum.AdminID).Error)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, 15, sum.Posts)
	assert.EqualValues(t, sum.Replies, testutil.CountRows(t, db, &models.Reply{}, "1 = 1"))
	assert.EqualValues(t, sum.Likes, testutil.CountRows(t, db, &models.LikeEntry{}, "1 = 1"))

	// Everything went through the services, so reconciliation finds nothing.
	report, err := repository.NewCounterRepository(db).Reconcile(ctx)
	require.NoError(t, err)
	for _, d := range report.Drift {
		assert.Zerof(t, d.Rows, "%s.%s drifted", d.Table, d.Column)
	}
	assert.Zero(t, report.OrphanedLikes)
}

func TestRun_CleanReplacesData(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, smallOptions()).Run(ctx)
	require.NoError(t, err)
	opts := smallOptions()
	opts.Seed = 7
	_, err = NewSeeder(db, opts).Run(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 13, testutil.CountRows(t, db, &models.User{}, "1 = 1"))
	assert.EqualValues(t, 15, testutil.CountRows(t, db, &models.Post{}, "1 = 1"))
}

func TestFactory_BuildUserEligibility(t *testing.T) {
	f := NewFactory(3)
	for i := 0; i < 20; i++ {
		alum := f.BuildUser(models.RoleAlumni)
		assert.NotEmpty(t, alum.GraduationYear)
		student := f.BuildUser(models.RoleStudent)
		assert.NotEmpty(t, student.GraduationYear)
		assert.NotEqual(t, alum.Username, student.Username)
	}
	assert.True(t, f.BuildUser(models.RoleAdmin).IsAdmin)
}

func TestFactory_UniqueNames(t *testing.T) {
	f := NewFactory(1)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name := f.BuildSchool().Name
		require.False(t, seen[name], "duplicate %q", name)
		seen[name] = true
	}
}
