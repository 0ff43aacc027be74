package models

import "time"

// PostScope is the audience a post is published to. It is fixed at creation.
type PostScope string

const (
	ScopePublic     PostScope = "public"
	ScopeUniversity PostScope = "university"
	ScopeMajor      PostScope = "major"
)

// Valid reports whether s is a known scope.
func (s PostScope) Valid() bool {
	switch s {
	case ScopePublic, ScopeUniversity, ScopeMajor:
		return true
	}
	return false
}

// Post is a top-level question or opinion. It owns a reply tree.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorID    *uint     `gorm:"index" json:"author_id"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	Scope       PostScope `gorm:"type:varchar(20);not null;default:'public';index" json:"scope"`
	SchoolID    *uint     `gorm:"index" json:"school_id,omitempty"`
	MajorID     *uint     `gorm:"index" json:"major_id,omitempty"`
	Category    string    `gorm:"size:64;index" json:"category,omitempty"`
	LikeCount   int       `gorm:"not null;default:0" json:"like_count"`
	ReplyCount  int       `gorm:"not null;default:0" json:"reply_count"`
	Liked       bool      `gorm:"-" json:"liked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Thread is a post together with its reply forest.
type Thread struct {
	Post    *Post        `json:"post"`
	Replies []*ReplyNode `json:"replies"`
}
