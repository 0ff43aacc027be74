package models

import "time"

// Reply is one node of a post's reply tree. A nil ParentReplyID marks a top-level reply.
type Reply struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PostID        uint      `gorm:"not null;index" json:"post_id"`
	ParentReplyID *uint     `gorm:"index" json:"parent_reply_id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	AuthorID      *uint     `gorm:"index" json:"author_id"`
	IsAnonymous   bool      `gorm:"not null;default:false" json:"is_anonymous"`
	LikeCount     int       `gorm:"not null;default:0" json:"like_count"`
	Liked         bool      `gorm:"-" json:"liked"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReplyNode is the nested read model of a reply.
type ReplyNode struct {
	*Reply
	Children []*ReplyNode `json:"children"`
}
