package service

import (
	"context"
	"log/slog"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"
)

// WriteGate is consulted before every mutating operation. It reads the
// actor's current mute state on every call.
type WriteGate struct {
	users repository.UserRepository
}

func NewWriteGate(users repository.UserRepository) *WriteGate {
	return &WriteGate{users: users}
}

// CanWrite reports whether the actor may mutate content. Unknown actors
// cannot write.
func (g *WriteGate) CanWrite(ctx context.Context, actorID uint) (bool, error) {
	if actorID == 0 {
		return false, nil
	}
	user, err := g.users.GetByID(ctx, actorID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return false, nil
		}
		return false, storageErr(err)
	}
	return !user.IsMuted, nil
}

// Require returns the actor when it may write and PERMISSION_DENIED otherwise.
func (g *WriteGate) Require(ctx context.Context, actorID uint) (*models.User, error) {
	return g.require(ctx, actorID, "write")
}

func (g *WriteGate) require(ctx context.Context, actorID uint, operation string) (*models.User, error) {
	if actorID == 0 {
		observability.WriteGateRejections.WithLabelValues(operation).Inc()
		return nil, models.NewPermissionDeniedError("an identified actor is required")
	}
	user, err := g.users.GetByID(ctx, actorID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.WriteGateRejections.WithLabelValues(operation).Inc()
			return nil, models.NewPermissionDeniedError("unknown actor")
		}
		return nil, storageErr(err)
	}
	if user.IsMuted {
		observability.WriteGateRejections.WithLabelValues(operation).Inc()
		slog.InfoContext(ctx, "write gate rejected muted actor",
			slog.Uint64("actor_id", uint64(actorID)),
			slog.String("operation", operation),
		)
		return nil, models.NewPermissionDeniedError("your account is muted")
	}
	return user, nil
}

// SetMuted is the administrator capability that flips an actor's mute state.
func (g *WriteGate) SetMuted(ctx context.Context, actorID uint, muted bool) error {
	if err := g.users.SetMuted(ctx, actorID, muted); err != nil {
		return storageErr(err)
	}
	slog.InfoContext(ctx, "actor mute state changed",
		slog.Uint64("actor_id", uint64(actorID)),
		slog.Bool("muted", muted),
	)
	return nil
}
