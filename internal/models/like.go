package models

import "time"

// SubjectKind names a likeable entity type.
type SubjectKind string

const (
	SubjectPost        SubjectKind = "post"
	SubjectReply       SubjectKind = "reply"
	SubjectTestimonial SubjectKind = "testimonial"
)

// Valid reports whether k is a likeable kind.
func (k SubjectKind) Valid() bool {
	switch k {
	case SubjectPost, SubjectReply, SubjectTestimonial:
		return true
	}
	return false
}

// LikeEntry records that one actor currently likes one subject.
type LikeEntry struct {
	SubjectKind SubjectKind `gorm:"primaryKey;type:varchar(20)" json:"subject_kind"`
	SubjectID   uint        `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	ActorID     uint        `gorm:"primaryKey;autoIncrement:false;index" json:"actor_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName keeps the ledger table name explicit.
func (LikeEntry) TableName() string {
	return "like_entries"
}

// LikeResult is the outcome of a toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"like_count"`
}
