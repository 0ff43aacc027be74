package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campusbridge/internal/events"
	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxReportReasonLen = 1000

type ReportService struct {
	gate    *WriteGate
	reports repository.ReportRepository
	events  events.Publisher
	now     func() time.Time
}

type CreateReportInput struct {
	TargetKind models.ReportTargetKind
	TargetID   uint
	ReporterID uint
	Reason     string
}

func NewReportService(gate *WriteGate, reports repository.ReportRepository, publisher events.Publisher) *ReportService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ReportService{gate: gate, reports: reports, events: publisher, now: time.Now}
}

// CreateReport files a pending report carrying a snapshot of the target.
func (s *ReportService) CreateReport(ctx context.Context, in CreateReportInput) (report *models.Report, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReportService", "CreateReport",
		attribute.String("report.target_kind", string(in.TargetKind)),
		attribute.Int64("report.target_id", int64(in.TargetID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.gate.require(ctx, in.ReporterID, "create_report"); err != nil {
		return nil, err
	}
	if !in.TargetKind.Valid() {
		return nil, models.NewValidationError("target_kind must be post or reply")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}
	if len(reason) > maxReportReasonLen {
		return nil, models.NewValidationError(fmt.Sprintf("Reason too long (max %d characters)", maxReportReasonLen))
	}

	report = &models.Report{
		TargetKind: in.TargetKind,
		TargetID:   in.TargetID,
		ReporterID: in.ReporterID,
		Reason:     reason,
	}
	if err := s.reports.CreateWithSnapshot(ctx, report); err != nil {
		return nil, storageErr(err)
	}

	observability.ReportTransitions.WithLabelValues(string(models.ReportPending)).Inc()
	e := events.New(events.ReportCreated, reportEventKind, report.ID, in.ReporterID)
	e.Attributes = targetAttributes(report)
	events.Emit(ctx, s.events, e)
	return report, nil
}

// ResolveReport moves a pending report to resolved or ignored. A report can
// be resolved once; later attempts are INVALID_STATE_TRANSITION.
func (s *ReportService) ResolveReport(ctx context.Context, reportID uint, outcome models.ReportStatus, resolverID uint) (report *models.Report, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReportService", "ResolveReport",
		attribute.Int64("report.id", int64(reportID)),
		attribute.String("report.outcome", string(outcome)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if outcome != models.ReportResolved && outcome != models.ReportIgnored {
		return nil, models.NewValidationError("outcome must be resolved or ignored")
	}
	report, err = s.reports.Resolve(ctx, reportID, outcome, resolverID, s.now().UTC())
	if err != nil {
		return nil, storageErr(err)
	}

	observability.ReportTransitions.WithLabelValues(string(outcome)).Inc()
	e := events.New(events.ReportResolved, reportEventKind, report.ID, resolverID)
	e.RecipientID = report.ReporterID
	e.Attributes = targetAttributes(report)
	e.Attributes["outcome"] = string(outcome)
	events.Emit(ctx, s.events, e)
	return report, nil
}

func (s *ReportService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error) {
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("Invalid report status")
	}
	reports, err := s.reports.List(ctx, status, limit, offset)
	if err != nil {
		return nil, storageErr(err)
	}
	return reports, nil
}

func (s *ReportService) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	return report, storageErr(err)
}

// Report events are keyed by the report itself; the reported content travels
// in the attributes.
const reportEventKind = "report"

func targetAttributes(r *models.Report) map[string]string {
	return map[string]string{
		"target_kind": string(r.TargetKind),
		"target_id":   strconv.FormatUint(uint64(r.TargetID), 10),
	}
}
