package repository

import (
	"context"
	"errors"

	"campusbridge/internal/cache"
	"campusbridge/internal/models"
	"campusbridge/internal/observability"

	"gorm.io/gorm"
)

// ReplyRepository owns the reply tree and the post reply_count it feeds.
type ReplyRepository interface {
	// Create inserts reply under its post and bumps reply_count. When the
	// parent does not resolve under the same post the reply becomes top level
	// (fellBack=true), or, with strictParent, the call fails with NOT_FOUND.
	Create(ctx context.Context, reply *models.Reply, strictParent bool) (fellBack bool, err error)
	GetByID(ctx context.Context, postID, replyID uint) (*models.Reply, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error)
	// DeleteSubtree removes the reply, all its descendants and their like
	// entries after authorize approves the node, and returns the removed IDs.
	DeleteSubtree(ctx context.Context, postID, replyID uint, authorize func(*models.Reply) error) ([]uint, error)
}

type replyRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReplyRepository creates a new reply tree repository
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db, log: observability.NewRepoLogger("replies")}
}

// Both tree mutations lock the owning post row, which serializes inserts
// against cascading deletes of the same thread.
func lockPost(tx *gorm.DB, postID uint) error {
	var post struct{ ID uint }
	err := forUpdate(tx.Table("posts")).Select("id").Where("id = ?", postID).Take(&post).Error
	return notFoundOr(err, "post", postID)
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply, strictParent bool) (bool, error) {
	reply.ID, reply.LikeCount = 0, 0

	var fellBack bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, reply.PostID); err != nil {
			return err
		}

		if reply.ParentReplyID != nil {
			var parent struct{ ID uint }
			err := tx.Model(&models.Reply{}).Select("id").
				Where("id = ? AND post_id = ?", *reply.ParentReplyID, reply.PostID).
				Take(&parent).Error
			switch {
			case err == nil:
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			case strictParent:
				return models.NewNotFoundError("parent reply", *reply.ParentReplyID)
			default:
				reply.ParentReplyID = nil
				fellBack = true
			}
		}

		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
			UpdateColumn("reply_count", incrementBy("reply_count", 1)).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return false, err
	}

	cache.InvalidatePost(ctx, reply.PostID)
	r.log.LogCreate(ctx, map[string]interface{}{
		"post_id":   reply.PostID,
		"reply_id":  reply.ID,
		"fell_back": fellBack,
	})
	return fellBack, nil
}

func (r *replyRepository) GetByID(ctx context.Context, postID, replyID uint) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", replyID, postID).First(&reply).Error
	if err != nil {
		return nil, notFoundOr(err, "reply", replyID)
	}
	return &reply, nil
}

// ListByPost returns the post's flat arena ordered by creation.
func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error) {
	var replies []*models.Reply
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC, id ASC").Find(&replies).Error
	return replies, err
}

func (r *replyRepository) DeleteSubtree(ctx context.Context, postID, replyID uint, authorize func(*models.Reply) error) ([]uint, error) {
	defer observability.TrackQuery("delete_subtree", "replies")()

	var removed []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}

		var node models.Reply
		if err := tx.Where("id = ? AND post_id = ?", replyID, postID).First(&node).Error; err != nil {
			return notFoundOr(err, "reply", replyID)
		}
		if authorize != nil {
			if err := authorize(&node); err != nil {
				return err
			}
		}

		var links []replyLink
		if err := tx.Model(&models.Reply{}).Select("id, parent_reply_id").
			Where("post_id = ?", postID).Scan(&links).Error; err != nil {
			return err
		}
		ids := collectSubtree(links, replyID)

		if err := deleteLikes(tx, models.SubjectReply, ids); err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Reply{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("reply_count", decrementBy("reply_count", res.RowsAffected)).Error; err != nil {
			return err
		}
		removed = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	r.log.LogDelete(ctx, map[string]interface{}{
		"post_id":  postID,
		"reply_id": replyID,
		"removed":  len(removed),
	})
	return removed, nil
}
