package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"

	"gorm.io/gorm"
)

// CatalogFilter narrows a catalog listing.
type CatalogFilter struct {
	Status models.ReviewStatus
	// VisibleTo restricts results to approved entries plus those submitted by
	// this actor. Nil means no restriction (admin view).
	VisibleTo *uint
	Limit     int
	Offset    int
}

// CatalogRepository stores one kind of reviewable catalog entity.
type CatalogRepository[E any] interface {
	Create(ctx context.Context, entity *E) error
	GetByID(ctx context.Context, id uint) (*E, error)
	List(ctx context.Context, filter CatalogFilter) ([]*E, error)
	// Transition locks the entity, lets apply mutate its review state and
	// persists only the review columns.
	Transition(ctx context.Context, id uint, apply func(*models.Review) error) (*E, error)
	// UpdateFields overwrites editable columns. Unknown or review columns are
	// rejected with a validation error.
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*E, error)
}

type catalogRepository[E any, P models.ReviewablePtr[E]] struct {
	db       *gorm.DB
	kind     string
	editable map[string]bool
	log      *observability.RepoLogger
}

// NewCatalogRepository creates a repository for a catalog kind. editable lists
// the columns an admin edit may overwrite.
func NewCatalogRepository[E any, P models.ReviewablePtr[E]](db *gorm.DB, kind string, editable ...string) CatalogRepository[E] {
	allowed := make(map[string]bool, len(editable))
	for _, col := range editable {
		allowed[col] = true
	}
	return &catalogRepository[E, P]{
		db:       db,
		kind:     kind,
		editable: allowed,
		log:      observability.NewRepoLogger(kind),
	}
}

// NewSchoolRepository returns the school catalog repository.
func NewSchoolRepository(db *gorm.DB) CatalogRepository[models.School] {
	return NewCatalogRepository[models.School](db, "school", "name", "description", "location", "website")
}

// NewMajorRepository returns the major catalog repository.
func NewMajorRepository(db *gorm.DB) CatalogRepository[models.Major] {
	return NewCatalogRepository[models.Major](db, "major", "name", "description", "discipline", "degree_level")
}

func (r *catalogRepository[E, P]) duplicateOr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewValidationError(fmt.Sprintf("a %s with this name already exists", r.kind))
	}
	return err
}

func (r *catalogRepository[E, P]) Create(ctx context.Context, entity *E) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return r.duplicateOr(err)
	}
	state := P(entity).ReviewState()
	r.log.LogCreate(ctx, map[string]interface{}{"submitter_id": state.SubmitterID, "status": state.ReviewStatus})
	return nil
}

func (r *catalogRepository[E, P]) GetByID(ctx context.Context, id uint) (*E, error) {
	var entity E
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, notFoundOr(err, r.kind, id)
	}
	return &entity, nil
}

func (r *catalogRepository[E, P]) List(ctx context.Context, filter CatalogFilter) ([]*E, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Model(new(E))
	if filter.Status != "" {
		q = q.Where("review_status = ?", filter.Status)
	}
	if filter.VisibleTo != nil {
		q = q.Where("(review_status = ? OR submitter_id = ?)", models.ReviewApproved, *filter.VisibleTo)
	}

	var out []*E
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}

func (r *catalogRepository[E, P]) Transition(ctx context.Context, id uint, apply func(*models.Review) error) (*E, error) {
	var entity E
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&entity, id).Error; err != nil {
			return notFoundOr(err, r.kind, id)
		}
		if err := apply(P(&entity).ReviewState()); err != nil {
			return err
		}
		return tx.Model(&entity).
			Select("review_status", "rejection_reason", "reviewed_at", "updated_at").
			Updates(&entity).Error
	})
	if err != nil {
		return nil, err
	}

	state := P(&entity).ReviewState()
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "review_status": state.ReviewStatus})
	return &entity, nil
}

func (r *catalogRepository[E, P]) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*E, error) {
	if len(fields) == 0 {
		return nil, models.NewValidationError("no fields to update")
	}
	updates := make(map[string]interface{}, len(fields))
	for col, val := range fields {
		col = strings.ToLower(strings.TrimSpace(col))
		if !r.editable[col] {
			return nil, models.NewValidationError(fmt.Sprintf("field %q is not editable", col))
		}
		updates[col] = val
	}

	var entity E
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&entity, id).Error; err != nil {
			return notFoundOr(err, r.kind, id)
		}
		if err := tx.Model(&entity).Updates(updates).Error; err != nil {
			return r.duplicateOr(err)
		}
		return tx.First(&entity, id).Error
	})
	if err != nil {
		return nil, err
	}

	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(updates)})
	return &entity, nil
}
