package repository

import (
	"context"

	"campusbridge/internal/cache"
	"campusbridge/internal/models"
	"campusbridge/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero values mean "any".
type PostFilter struct {
	Scope    models.PostScope
	SchoolID uint
	MajorID  uint
	Category string
	AuthorID uint
	Limit    int
	Offset   int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	// Delete removes the post, its whole reply tree and every like entry on
	// them, after authorize approves the locked row. It returns the number of
	// replies removed.
	Delete(ctx context.Context, id uint, authorize func(*models.Post) error) (int64, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	// Counters start at zero and only move through the ledger and tree.
	post.ID, post.LikeCount, post.ReplyCount = 0, 0, 0
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "scope": post.Scope})
	return nil
}

// GetByID reads through the post cache. Callers invalidate on every mutation.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.Scope != "" {
		q = q.Where("scope = ?", filter.Scope)
	}
	if filter.SchoolID != 0 {
		q = q.Where("school_id = ?", filter.SchoolID)
	}
	if filter.MajorID != 0 {
		q = q.Where("major_id = ?", filter.MajorID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ? AND is_anonymous = ?", filter.AuthorID, false)
	}

	var posts []*models.Post
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Delete(ctx context.Context, id uint, authorize func(*models.Post) error) (int64, error) {
	defer observability.TrackQuery("delete_post", "posts")()

	var repliesRemoved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := forUpdate(tx).First(&post, id).Error; err != nil {
			return notFoundOr(err, "post", id)
		}
		if authorize != nil {
			if err := authorize(&post); err != nil {
				return err
			}
		}

		var replyIDs []uint
		if err := tx.Model(&models.Reply{}).Where("post_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if err := deleteLikes(tx, models.SubjectReply, replyIDs); err != nil {
			return err
		}
		res := tx.Where("post_id = ?", id).Delete(&models.Reply{})
		if res.Error != nil {
			return res.Error
		}
		repliesRemoved = res.RowsAffected

		if err := deleteLikes(tx, models.SubjectPost, []uint{id}); err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return 0, err
	}

	cache.InvalidatePost(ctx, id)
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id, "replies_removed": repliesRemoved})
	return repliesRemoved, nil
}
