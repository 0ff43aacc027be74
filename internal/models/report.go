package models

import "time"

// ReportTargetKind is the kind of content a report points at.
type ReportTargetKind string

const (
	ReportTargetPost  ReportTargetKind = "post"
	ReportTargetReply ReportTargetKind = "reply"
)

// Valid reports whether k is reportable.
func (k ReportTargetKind) Valid() bool {
	return k == ReportTargetPost || k == ReportTargetReply
}

// ReportStatus tracks moderation progress. Resolved and ignored are terminal.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
	ReportIgnored  ReportStatus = "ignored"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportResolved, ReportIgnored:
		return true
	}
	return false
}

// Report flags a post or reply for moderator attention. The snapshot fields are
// copied at creation and never updated.
type Report struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	TargetKind       ReportTargetKind `gorm:"type:varchar(20);not null;index:idx_report_target" json:"target_kind"`
	TargetID         uint             `gorm:"not null;index:idx_report_target" json:"target_id"`
	ReporterID       uint             `gorm:"not null;index" json:"reporter_id"`
	Reason           string           `gorm:"type:text;not null" json:"reason"`
	SnapshotTitle    string           `gorm:"size:300" json:"snapshot_title"`
	SnapshotContent  string           `gorm:"type:text" json:"snapshot_content"`
	Status           ReportStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ResolvedByUserID *uint            `json:"resolved_by_user_id,omitempty"`
	ResolvedAt       *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
