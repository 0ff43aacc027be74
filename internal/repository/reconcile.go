package repository

import (
	"context"
	"fmt"
	"sort"

	"campusbridge/internal/cache"
	"campusbridge/internal/models"

	"gorm.io/gorm"
)

// CounterDrift is the number of rows repaired for one denormalized counter.
type CounterDrift struct {
	Table  string
	Column string
	Rows   int64
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Drift         []CounterDrift
	OrphanedLikes int64
	// RepairedPosts lists posts whose cached views were dropped because a
	// counter on the post or one of its replies changed.
	RepairedPosts []uint
}

// CounterRepository repairs denormalized counters from their source tables.
type CounterRepository interface {
	Reconcile(ctx context.Context) (ReconcileReport, error)
}

type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter reconciliation repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// postColumn names the column that maps a row to its cached post, or is
// empty when the table has no post cache.
type counterSource struct {
	table, column, source, postColumn string
}

func counterSources() []counterSource {
	likes := func(kind models.SubjectKind, table string) string {
		return fmt.Sprintf("(SELECT COUNT(*) FROM like_entries WHERE like_entries.subject_kind = '%s' AND like_entries.subject_id = %s.id)", kind, table)
	}
	return []counterSource{
		{"posts", "reply_count", "(SELECT COUNT(*) FROM replies WHERE replies.post_id = posts.id)", "id"},
		{"posts", "like_count", likes(models.SubjectPost, "posts"), "id"},
		{"replies", "like_count", likes(models.SubjectReply, "replies"), "post_id"},
		{"testimonials", "like_count", likes(models.SubjectTestimonial, "testimonials"), ""},
	}
}

// Reconcile drops like entries whose subject no longer exists, then rewrites
// every counter that disagrees with its source. Posts, replies and
// testimonials themselves are never modified beyond their counter columns.
// Cached views of repaired posts are invalidated after commit.
func (r *counterRepository) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	stale := map[uint]bool{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for kind, table := range subjectTables {
			res := tx.Exec(fmt.Sprintf(
				"DELETE FROM like_entries WHERE subject_kind = ? AND NOT EXISTS (SELECT 1 FROM %s WHERE %s.id = like_entries.subject_id)",
				table, table), kind)
			if res.Error != nil {
				return fmt.Errorf("purge orphaned %s likes: %w", kind, res.Error)
			}
			report.OrphanedLikes += res.RowsAffected
		}

		for _, src := range counterSources() {
			drifted := fmt.Sprintf("%s <> %s", src.column, src.source)
			if src.postColumn != "" {
				var postIDs []uint
				if err := tx.Table(src.table).Where(drifted).Distinct().Pluck(src.postColumn, &postIDs).Error; err != nil {
					return fmt.Errorf("find drifted %s.%s: %w", src.table, src.column, err)
				}
				for _, id := range postIDs {
					stale[id] = true
				}
			}

			res := tx.Exec(fmt.Sprintf("UPDATE %[1]s SET %[2]s = %[3]s WHERE %[4]s", src.table, src.column, src.source, drifted))
			if res.Error != nil {
				return fmt.Errorf("reconcile %s.%s: %w", src.table, src.column, res.Error)
			}
			report.Drift = append(report.Drift, CounterDrift{Table: src.table, Column: src.column, Rows: res.RowsAffected})
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	for id := range stale {
		cache.InvalidatePost(ctx, id)
		report.RepairedPosts = append(report.RepairedPosts, id)
	}
	sort.Slice(report.RepairedPosts, func(i, j int) bool { return report.RepairedPosts[i] < report.RepairedPosts[j] })
	return report, nil
}
