package repository

import (
	"context"

	"campusbridge/internal/cache"
	"campusbridge/internal/models"
	"campusbridge/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository owns the like ledger and the like_count columns it feeds.
type LikeRepository interface {
	Toggle(ctx context.Context, kind models.SubjectKind, subjectID, actorID uint) (models.LikeResult, error)
	LikedSubjectIDs(ctx context.Context, kind models.SubjectKind, actorID uint, subjectIDs []uint) (map[uint]bool, error)
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new like ledger repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("like_entries")}
}

// Toggle flips the actor's like on the subject in one transaction. The subject
// row is locked for update up front: toggles on one subject run one at a time
// and a concurrent delete cannot leave a dangling entry.
func (r *likeRepository) Toggle(ctx context.Context, kind models.SubjectKind, subjectID, actorID uint) (models.LikeResult, error) {
	table, err := subjectTable(kind)
	if err != nil {
		return models.LikeResult{}, err
	}
	defer observability.TrackQuery("toggle_like", table)()

	columns := "id"
	if kind == models.SubjectReply {
		columns = "id, post_id"
	}

	var result models.LikeResult
	var subject struct {
		ID     uint
		PostID uint
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx.Table(table)).Select(columns).Where("id = ?", subjectID).Take(&subject).Error; err != nil {
			return notFoundOr(err, string(kind), subjectID)
		}

		removed := tx.Where("subject_kind = ? AND subject_id = ? AND actor_id = ?", kind, subjectID, actorID).
			Delete(&models.LikeEntry{})
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected > 0 {
			result.Liked = false
			if err := tx.Table(table).Where("id = ?", subjectID).
				UpdateColumn("like_count", decrementBy("like_count", removed.RowsAffected)).Error; err != nil {
				return err
			}
		} else {
			// A racing insert by the same actor lands on the primary key and
			// becomes a no-op, so the counter is only bumped for a real insert.
			inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.LikeEntry{SubjectKind: kind, SubjectID: subjectID, ActorID: actorID})
			if inserted.Error != nil {
				return inserted.Error
			}
			result.Liked = true
			if inserted.RowsAffected > 0 {
				if err := tx.Table(table).Where("id = ?", subjectID).
					UpdateColumn("like_count", incrementBy("like_count", inserted.RowsAffected)).Error; err != nil {
					return err
				}
			}
		}

		return tx.Table(table).Select("like_count").Where("id = ?", subjectID).Row().Scan(&result.Count)
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle")
		return models.LikeResult{}, err
	}

	switch kind {
	case models.SubjectPost:
		cache.InvalidatePost(ctx, subjectID)
	case models.SubjectReply:
		cache.InvalidatePost(ctx, subject.PostID)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{
		"subject_kind": kind,
		"subject_id":   subjectID,
		"actor_id":     actorID,
		"liked":        result.Liked,
		"like_count":   result.Count,
	})
	return result, nil
}

func (r *likeRepository) LikedSubjectIDs(ctx context.Context, kind models.SubjectKind, actorID uint, subjectIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if actorID == 0 || len(subjectIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.LikeEntry{}).
		Where("subject_kind = ? AND actor_id = ? AND subject_id IN ?", kind, actorID, subjectIDs).
		Pluck("subject_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
