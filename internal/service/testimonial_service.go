package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxTestimonialLen = 5000

type TestimonialService struct {
	gate         *WriteGate
	testimonials repository.TestimonialRepository
	likes        repository.LikeRepository
	now          func() time.Time
}

func NewTestimonialService(gate *WriteGate, testimonials repository.TestimonialRepository, likes repository.LikeRepository) *TestimonialService {
	return &TestimonialService{gate: gate, testimonials: testimonials, likes: likes, now: time.Now}
}

// CreateTestimonial publishes a testimonial. The author must pass the write
// gate and be classified as an alumnus at the time of writing.
func (s *TestimonialService) CreateTestimonial(ctx context.Context, actorID uint, content string) (testimonial *models.Testimonial, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TestimonialService", "CreateTestimonial")
	defer func() { observability.EndSpan(span, err) }()

	actor, err := s.gate.require(ctx, actorID, "create_testimonial")
	if err != nil {
		return nil, err
	}
	if !IsEligibleAlumnus(actor, s.now()) {
		return nil, models.NewPermissionDeniedError("only alumni can write testimonials")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxTestimonialLen {
		return nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxTestimonialLen))
	}

	testimonial = &models.Testimonial{AuthorID: actorID, Content: content}
	if err := s.testimonials.Create(ctx, testimonial); err != nil {
		return nil, storageErr(err)
	}
	return testimonial, nil
}

func (s *TestimonialService) ListTestimonials(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Testimonial, error) {
	list, err := s.testimonials.List(ctx, limit, offset)
	if err != nil {
		return nil, storageErr(err)
	}
	if viewerID == 0 || len(list) == 0 {
		return list, nil
	}
	ids := make([]uint, len(list))
	for i, t := range list {
		ids[i] = t.ID
	}
	liked, err := s.likes.LikedSubjectIDs(ctx, models.SubjectTestimonial, viewerID, ids)
	if err != nil {
		return nil, storageErr(err)
	}
	for _, t := range list {
		t.Liked = liked[t.ID]
	}
	return list, nil
}

// DeleteTestimonial removes the testimonial and its like entries. Only the
// author or an admin may delete.
func (s *TestimonialService) DeleteTestimonial(ctx context.Context, id, actorID uint, isAdminOverride bool) (ok bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TestimonialService", "DeleteTestimonial",
		attribute.Int64("testimonial.id", int64(id)),
		attribute.Bool("admin.override", isAdminOverride),
	)
	defer func() { observability.EndSpan(span, err) }()

	err = s.testimonials.Delete(ctx, id, func(t *models.Testimonial) error {
		authorID := t.AuthorID
		return authorizeOwner(&authorID, actorID, isAdminOverride, "testimonial")
	})
	if err != nil {
		return false, storageErr(err)
	}
	return true, nil
}
