package models

import "time"

// ReviewStatus is the moderation state of a submitted catalog entity.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Review is the review state shared by every submitted catalog entity.
type Review struct {
	SubmitterID     uint         `gorm:"not null;index" json:"submitter_id"`
	ReviewStatus    ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"review_status"`
	RejectionReason string       `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
}

// ReviewState exposes the embedded review state.
func (r *Review) ReviewState() *Review {
	return r
}

// VisibleTo applies the catalog visibility rule: approved entities are public,
// everything else is visible to its submitter and to admins.
func (r *Review) VisibleTo(viewerID uint, isAdmin bool) bool {
	if r.ReviewStatus == ReviewApproved || isAdmin {
		return true
	}
	return viewerID != 0 && viewerID == r.SubmitterID
}

// Reviewable is implemented by pointers to catalog entities embedding Review.
type Reviewable interface {
	ReviewState() *Review
	EntityID() uint
	EntityName() string
	SetEntityName(name string)
}

// ReviewablePtr constrains a type parameter to *E where *E is Reviewable.
type ReviewablePtr[E any] interface {
	*E
	Reviewable
}

// School is a user-submitted university entry.
type School struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:160;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"size:160" json:"location"`
	Website     string `gorm:"size:255" json:"website"`
	Review      `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *School) EntityID() uint     { return s.ID }
func (s *School) EntityName() string { return s.Name }

func (s *School) SetEntityName(name string) { s.Name = name }

// Major is a user-submitted field-of-study entry.
type Major struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:160;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Discipline  string `gorm:"size:120" json:"discipline"`
	DegreeLevel string `gorm:"size:60" json:"degree_level"`
	Review      `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m *Major) EntityID() uint     { return m.ID }
func (m *Major) EntityName() string { return m.Name }

func (m *Major) SetEntityName(name string) { m.Name = name }
