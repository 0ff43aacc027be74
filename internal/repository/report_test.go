package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"campusbridge/internal/models"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_Snapshot(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	reports := NewReportRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	reporter := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)
	reply := &models.Reply{PostID: post.ID, Content: "buy my essays"}
	require.NoError(t, db.Create(reply).Error)

	onPost := &models.Report{TargetKind: models.ReportTargetPost, TargetID: post.ID, ReporterID: reporter.ID, Reason: "off topic", Status: models.ReportResolved}
	require.NoError(t, reports.CreateWithSnapshot(ctx, onPost))
	assert.Equal(t, models.ReportPending, onPost.Status)
	assert.Equal(t, post.Title, onPost.SnapshotTitle)
	assert.Equal(t, post.Content, onPost.SnapshotContent)

	onReply := &models.Report{TargetKind: models.ReportTargetReply, TargetID: reply.ID, ReporterID: reporter.ID, Reason: "spam"}
	require.NoError(t, reports.CreateWithSnapshot(ctx, onReply))
	assert.Equal(t, post.Title, onReply.SnapshotTitle)
	assert.Equal(t, "buy my essays", onReply.SnapshotContent)

	// Later edits and deletion of the target do not touch the snapshot.
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Update("content", "edited").Error)
	require.NoError(t, db.Delete(&models.Reply{}, reply.ID).Error)
	stored, err := reports.GetByID(ctx, onPost.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Content, stored.SnapshotContent)
	stored, err = reports.GetByID(ctx, onReply.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy my essays", stored.SnapshotContent)

	t.Run("missing target", func(t *testing.T) {
		err := reports.CreateWithSnapshot(ctx, &models.Report{TargetKind: models.ReportTargetReply, TargetID: reply.ID, ReporterID: reporter.ID})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := reports.CreateWithSnapshot(ctx, &models.Report{TargetKind: "user", TargetID: 1, ReporterID: reporter.ID})
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})
}

func TestReportRepository_Resolve(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	reports := NewReportRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	admin := testutil.CreateUser(t, db, models.User{IsAdmin: true, Role: models.RoleAdmin})
	post := testutil.CreatePost(t, db, author.ID)

	report := &models.Report{TargetKind: models.ReportTargetPost, TargetID: post.ID, ReporterID: author.ID, Reason: "dup"}
	require.NoError(t, reports.CreateWithSnapshot(ctx, report))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolved, err := reports.Resolve(ctx, report.ID, models.ReportResolved, admin.ID, at)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedByUserID)
	assert.Equal(t, admin.ID, *resolved.ResolvedByUserID)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = reports.Resolve(ctx, report.ID, models.ReportIgnored, admin.ID, at)
	assert.True(t, models.IsCode(err, models.CodeInvalidStateTransition))

	after, err := reports.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, after.Status, "terminal state is sticky")

	_, err = reports.Resolve(ctx, 5150, models.ReportResolved, admin.ID, at)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestReportRepository_ResolveRace(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	reports := NewReportRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)
	report := &models.Report{TargetKind: models.ReportTargetPost, TargetID: post.ID, ReporterID: author.ID}
	require.NoError(t, reports.CreateWithSnapshot(ctx, report))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, outcome := range []models.ReportStatus{models.ReportResolved, models.ReportIgnored} {
		wg.Add(1)
		go func(outcome models.ReportStatus) {
			defer wg.Done()
			_, err := reports.Resolve(ctx, report.ID, outcome, 0, time.Now())
			results <- err
		}(outcome)
	}
	wg.Wait()
	close(results)

	var ok, invalid int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case models.IsCode(err, models.CodeInvalidStateTransition):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)
}

func TestReportRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	reports := NewReportRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)
	for i := 0; i < 3; i++ {
		require.NoError(t, reports.CreateWithSnapshot(ctx, &models.Report{TargetKind: models.ReportTargetPost, TargetID: post.ID, ReporterID: author.ID}))
	}
	first, err := reports.List(ctx, "", 1, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	_, err = reports.Resolve(ctx, first[0].ID, models.ReportIgnored, 0, time.Now())
	require.NoError(t, err)

	pending, err := reports.List(ctx, models.ReportPending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
