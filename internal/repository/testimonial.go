package repository

import (
	"context"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"

	"gorm.io/gorm"
)

// TestimonialRepository defines persistence operations for testimonials.
type TestimonialRepository interface {
	Create(ctx context.Context, t *models.Testimonial) error
	GetByID(ctx context.Context, id uint) (*models.Testimonial, error)
	List(ctx context.Context, limit, offset int) ([]*models.Testimonial, error)
	// Delete removes the testimonial and its like entries after authorize
	// approves the locked row.
	Delete(ctx context.Context, id uint, authorize func(*models.Testimonial) error) error
}

type testimonialRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTestimonialRepository creates a new testimonial repository
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db, log: observability.NewRepoLogger("testimonials")}
}

func (r *testimonialRepository) Create(ctx context.Context, t *models.Testimonial) error {
	t.ID, t.LikeCount = 0, 0
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"testimonial_id": t.ID, "author_id": t.AuthorID})
	return nil
}

func (r *testimonialRepository) GetByID(ctx context.Context, id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, "testimonial", id)
	}
	return &t, nil
}

func (r *testimonialRepository) List(ctx context.Context, limit, offset int) ([]*models.Testimonial, error) {
	limit, offset = clampPage(limit, offset)
	var out []*models.Testimonial
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}

func (r *testimonialRepository) Delete(ctx context.Context, id uint, authorize func(*models.Testimonial) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Testimonial
		if err := forUpdate(tx).First(&t, id).Error; err != nil {
			return notFoundOr(err, "testimonial", id)
		}
		if authorize != nil {
			if err := authorize(&t); err != nil {
				return err
			}
		}
		if err := deleteLikes(tx, models.SubjectTestimonial, []uint{id}); err != nil {
			return err
		}
		return tx.Delete(&models.Testimonial{}, id).Error
	})
	if err != nil {
		return err
	}
	r.log.LogDelete(ctx, map[string]interface{}{"testimonial_id": id})
	return nil
}
