package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"

	"gorm.io/gorm"
)

// ReportRepository persists reports and their single terminal transition.
type ReportRepository interface {
	// CreateWithSnapshot copies the target's title and content into the
	// report and inserts it in one transaction. A missing target is NOT_FOUND.
	CreateWithSnapshot(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error)
	// Resolve moves a pending report to outcome. Any other current status is
	// INVALID_STATE_TRANSITION.
	Resolve(ctx context.Context, id uint, outcome models.ReportStatus, resolvedBy uint, at time.Time) (*models.Report, error)
}

type reportRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db, log: observability.NewRepoLogger("reports")}
}

func snapshotTarget(tx *gorm.DB, kind models.ReportTargetKind, id uint) (title, content string, err error) {
	switch kind {
	case models.ReportTargetPost:
		var post models.Post
		if err := tx.Select("id, title, content").First(&post, id).Error; err != nil {
			return "", "", notFoundOr(err, "post", id)
		}
		return post.Title, post.Content, nil
	case models.ReportTargetReply:
		var reply models.Reply
		if err := tx.Select("id, post_id, content").First(&reply, id).Error; err != nil {
			return "", "", notFoundOr(err, "reply", id)
		}
		// A reply has no title of its own; record the thread it lives in.
		var post models.Post
		if err := tx.Select("id, title").First(&post, reply.PostID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", err
		}
		return post.Title, reply.Content, nil
	default:
		return "", "", models.NewValidationError(fmt.Sprintf("unknown report target kind %q", kind))
	}
}

func (r *reportRepository) CreateWithSnapshot(ctx context.Context, report *models.Report) error {
	report.ID = 0
	report.Status = models.ReportPending
	report.ResolvedAt, report.ResolvedByUserID = nil, nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		title, content, err := snapshotTarget(tx, report.TargetKind, report.TargetID)
		if err != nil {
			return err
		}
		report.SnapshotTitle, report.SnapshotContent = title, content
		return tx.Create(report).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}

	r.log.LogCreate(ctx, map[string]interface{}{
		"report_id":   report.ID,
		"target_kind": report.TargetKind,
		"target_id":   report.TargetID,
	})
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, notFoundOr(err, "report", id)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error) {
	limit, offset = clampPage(limit, offset)
	q := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reports []*models.Report
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&reports).Error
	return reports, err
}

func (r *reportRepository) Resolve(ctx context.Context, id uint, outcome models.ReportStatus, resolvedBy uint, at time.Time) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":      outcome,
			"resolved_at": at,
		}
		if resolvedBy != 0 {
			updates["resolved_by_user_id"] = resolvedBy
		}

		// The status predicate makes the transition single-shot even when two
		// moderators race.
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", id, models.ReportPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if err := tx.First(&report, id).Error; err != nil {
			return notFoundOr(err, "report", id)
		}
		if res.RowsAffected == 0 {
			return models.NewInvalidStateError(fmt.Sprintf("report %d is already %s", id, report.Status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.LogUpdate(ctx, map[string]interface{}{"report_id": id, "status": outcome})
	return &report, nil
}
