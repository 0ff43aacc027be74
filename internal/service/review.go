package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campusbridge/internal/events"
	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxCatalogNameLen = 160
	maxRejectionLen   = 2000
)

// ReviewWorkflow runs the pending -> approved | rejected pipeline for one
// kind of submitted catalog entity. Admin checks happen at the HTTP boundary.
type ReviewWorkflow[E any, P models.ReviewablePtr[E]] struct {
	kind   string
	gate   *WriteGate
	store  repository.CatalogRepository[E]
	events events.Publisher
	now    func() time.Time
}

func NewReviewWorkflow[E any, P models.ReviewablePtr[E]](
	kind string,
	gate *WriteGate,
	store repository.CatalogRepository[E],
	publisher events.Publisher,
) *ReviewWorkflow[E, P] {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ReviewWorkflow[E, P]{
		kind:   kind,
		gate:   gate,
		store:  store,
		events: publisher,
		now:    time.Now,
	}
}

// NewSchoolWorkflow returns the review workflow for schools.
func NewSchoolWorkflow(gate *WriteGate, store repository.CatalogRepository[models.School], publisher events.Publisher) *ReviewWorkflow[models.School, *models.School] {
	return NewReviewWorkflow[models.School]("school", gate, store, publisher)
}

// NewMajorWorkflow returns the review workflow for majors.
func NewMajorWorkflow(gate *WriteGate, store repository.CatalogRepository[models.Major], publisher events.Publisher) *ReviewWorkflow[models.Major, *models.Major] {
	return NewReviewWorkflow[models.Major]("major", gate, store, publisher)
}

func (w *ReviewWorkflow[E, P]) Kind() string { return w.kind }

func validateCatalogName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewValidationError("Name is required")
	}
	if len(name) > maxCatalogNameLen {
		return models.NewValidationError(fmt.Sprintf("Name too long (max %d characters)", maxCatalogNameLen))
	}
	return nil
}

// Submit stores entity as pending on behalf of submitterID. Any review state
// carried by the input is discarded.
func (w *ReviewWorkflow[E, P]) Submit(ctx context.Context, entity *E, submitterID uint) (_ *E, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReviewWorkflow", "Submit",
		attribute.String("catalog.kind", w.kind),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := w.gate.require(ctx, submitterID, "submit_"+w.kind); err != nil {
		return nil, err
	}
	if err := validateCatalogName(P(entity).EntityName()); err != nil {
		return nil, err
	}
	P(entity).SetEntityName(strings.TrimSpace(P(entity).EntityName()))

	*P(entity).ReviewState() = models.Review{
		SubmitterID:  submitterID,
		ReviewStatus: models.ReviewPending,
	}
	if err := w.store.Create(ctx, entity); err != nil {
		return nil, storageErr(err)
	}

	observability.ReviewTransitions.WithLabelValues(w.kind, string(models.ReviewPending)).Inc()
	events.Emit(ctx, w.events, events.New(events.CatalogSubmitted, w.kind, P(entity).EntityID(), submitterID))
	return entity, nil
}

// Approve marks the entity approved and clears any rejection reason.
// Approving an approved entity succeeds without changing it.
func (w *ReviewWorkflow[E, P]) Approve(ctx context.Context, id, reviewerID uint) (*E, error) {
	now := w.now().UTC()
	return w.transition(ctx, "Approve", id, reviewerID, events.CatalogApproved, func(r *models.Review) error {
		if r.ReviewStatus == models.ReviewApproved && r.RejectionReason == "" {
			return nil
		}
		r.ReviewStatus = models.ReviewApproved
		r.RejectionReason = ""
		r.ReviewedAt = &now
		return nil
	})
}

// Reject marks the entity rejected with a mandatory reason. A blank reason is
// a validation error and leaves the entity untouched.
func (w *ReviewWorkflow[E, P]) Reject(ctx context.Context, id, reviewerID uint, reason string) (*E, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("A rejection reason is required")
	}
	if len(reason) > maxRejectionLen {
		return nil, models.NewValidationError(fmt.Sprintf("Rejection reason too long (max %d characters)", maxRejectionLen))
	}
	now := w.now().UTC()
	return w.transition(ctx, "Reject", id, reviewerID, events.CatalogRejected, func(r *models.Review) error {
		r.ReviewStatus = models.ReviewRejected
		r.RejectionReason = reason
		r.ReviewedAt = &now
		return nil
	})
}

func (w *ReviewWorkflow[E, P]) transition(ctx context.Context, method string, id, reviewerID uint, evt events.Type, apply func(*models.Review) error) (_ *E, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReviewWorkflow", method,
		attribute.String("catalog.kind", w.kind),
		attribute.Int64("catalog.id", int64(id)),
	)
	defer func() { observability.EndSpan(span, err) }()

	var before models.Review
	entity, err := w.store.Transition(ctx, id, func(r *models.Review) error {
		before = *r
		return apply(r)
	})
	if err != nil {
		return nil, storageErr(err)
	}

	after := *P(entity).ReviewState()
	if before.ReviewStatus == after.ReviewStatus && before.RejectionReason == after.RejectionReason {
		return entity, nil
	}
	observability.ReviewTransitions.WithLabelValues(w.kind, string(after.ReviewStatus)).Inc()

	e := events.New(evt, w.kind, id, reviewerID)
	e.RecipientID = after.SubmitterID
	if after.RejectionReason != "" {
		e.Attributes = map[string]string{"reason": after.RejectionReason}
	}
	events.Emit(ctx, w.events, e)
	return entity, nil
}

// Edit overwrites allow-listed fields. Review state is never touched.
func (w *ReviewWorkflow[E, P]) Edit(ctx context.Context, id uint, fields map[string]interface{}) (*E, error) {
	for col, val := range fields {
		if strings.EqualFold(strings.TrimSpace(col), "name") {
			name, ok := val.(string)
			if !ok {
				return nil, models.NewValidationError("Name must be a string")
			}
			if err := validateCatalogName(name); err != nil {
				return nil, err
			}
			fields[col] = strings.TrimSpace(name)
		}
	}
	entity, err := w.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, storageErr(err)
	}
	return entity, nil
}

// Get returns the entity if viewer may see it. Hidden entities are NOT_FOUND.
func (w *ReviewWorkflow[E, P]) Get(ctx context.Context, id uint, viewer Viewer) (*E, error) {
	entity, err := w.store.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if !P(entity).ReviewState().VisibleTo(viewer.ID, viewer.IsAdmin) {
		return nil, models.NewNotFoundError(w.kind, id)
	}
	return entity, nil
}

// List returns the entities visible to viewer, optionally narrowed by status.
func (w *ReviewWorkflow[E, P]) List(ctx context.Context, viewer Viewer, status models.ReviewStatus, limit, offset int) ([]*E, error) {
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("Invalid review status")
	}
	filter := repository.CatalogFilter{Status: status, Limit: limit, Offset: offset}
	if !viewer.IsAdmin {
		viewerID := viewer.ID
		filter.VisibleTo = &viewerID
	}
	entities, err := w.store.List(ctx, filter)
	if err != nil {
		return nil, storageErr(err)
	}
	return entities, nil
}
