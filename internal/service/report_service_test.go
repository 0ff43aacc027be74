package service

import (
	"context"
	"strconv"
	"testing"

	"campusbridge/internal/events"
	"campusbridge/internal/models"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_CreateAndResolve(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	author := env.user(t, models.User{})
	reporter := env.user(t, models.User{})
	admin := env.user(t, models.User{IsAdmin: true})
	post := env.post(t, author.ID)

	report, err := env.reports.CreateReport(ctx, CreateReportInput{
		TargetKind: models.ReportTargetPost,
		TargetID:   post.ID,
		ReporterID: reporter.ID,
		Reason:     " harassment ",
	})
	require.NoError(t, err)
	assert.Equal(t, "harassment", report.Reason)
	assert.Equal(t, post.Title, report.SnapshotTitle)
	assert.Equal(t, models.ReportPending, report.Status)

	_, err = env.reports.ResolveReport(ctx, report.ID, models.ReportPending, admin.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	resolved, err := env.reports.ResolveReport(ctx, report.ID, models.ReportIgnored, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportIgnored, resolved.Status)

	_, err = env.reports.ResolveReport(ctx, report.ID, models.ReportResolved, admin.ID)
	assert.True(t, models.IsCode(err, models.CodeInvalidStateTransition))

	stored, err := env.reports.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportIgnored, stored.Status)

	assert.Equal(t, []events.Type{events.ReportCreated, events.ReportResolved}, env.events.types())
	assert.Equal(t, reporter.ID, env.events.events[1].RecipientID)
	for _, e := range env.events.events {
		assert.Equal(t, "report", e.Kind)
		assert.Equal(t, report.ID, e.SubjectID)
		assert.Equal(t, string(models.ReportTargetPost), e.Attributes["target_kind"])
		assert.Equal(t, strconv.FormatUint(uint64(post.ID), 10), e.Attributes["target_id"])
	}
	assert.Equal(t, string(models.ReportIgnored), env.events.events[1].Attributes["outcome"])

	pending, err := env.reports.ListReports(ctx, models.ReportPending, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
	_, err = env.reports.ListReports(ctx, "closed", 0, 0)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestReportService_CreateGuards(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	author := env.user(t, models.User{})
	muted := env.user(t, models.User{IsMuted: true})
	post := env.post(t, author.ID)

	tests := []struct {
		name string
		in   CreateReportInput
		code string
	}{
		{"muted reporter", CreateReportInput{TargetKind: models.ReportTargetPost, TargetID: post.ID, ReporterID: muted.ID, Reason: "x"}, models.CodePermissionDenied},
		{"blank reason", CreateReportInput{TargetKind: models.ReportTargetPost, TargetID: post.ID, ReporterID: author.ID, Reason: " "}, models.CodeValidation},
		{"bad kind", CreateReportInput{TargetKind: "testimonial", TargetID: 1, ReporterID: author.ID, Reason: "x"}, models.CodeValidation},
		{"missing target", CreateReportInput{TargetKind: models.ReportTargetReply, TargetID: 77, ReporterID: author.ID, Reason: "x"}, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reports.CreateReport(ctx, tt.in)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}
	assert.Zero(t, testutil.CountRows(t, env.db, &models.Report{}, ""))
}
