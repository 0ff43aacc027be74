package service

import (
	"context"
	"strconv"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type LikeService struct {
	gate  *WriteGate
	likes repository.LikeRepository
}

func NewLikeService(gate *WriteGate, likes repository.LikeRepository) *LikeService {
	return &LikeService{gate: gate, likes: likes}
}

// ToggleLike flips actorID's like on the subject and returns the new state.
func (s *LikeService) ToggleLike(ctx context.Context, kind models.SubjectKind, subjectID, actorID uint) (result models.LikeResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "LikeService", "ToggleLike",
		attribute.String("subject.kind", string(kind)),
		attribute.Int64("subject.id", int64(subjectID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if !kind.Valid() {
		return models.LikeResult{}, models.NewValidationError("unknown subject kind")
	}
	if _, err := s.gate.require(ctx, actorID, "toggle_like"); err != nil {
		return models.LikeResult{}, err
	}

	result, err = s.likes.Toggle(ctx, kind, subjectID, actorID)
	if err != nil {
		return models.LikeResult{}, storageErr(err)
	}
	observability.LikeToggles.WithLabelValues(string(kind), strconv.FormatBool(result.Liked)).Inc()
	return result, nil
}

// LikedSubjectIDs returns the subset of ids the viewer likes.
func (s *LikeService) LikedSubjectIDs(ctx context.Context, kind models.SubjectKind, viewerID uint, ids []uint) (map[uint]bool, error) {
	liked, err := s.likes.LikedSubjectIDs(ctx, kind, viewerID, ids)
	return liked, storageErr(err)
}
