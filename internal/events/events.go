// Package events publishes post-commit domain events to an external sink.
package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campusbridge/internal/observability"

	"github.com/google/uuid"
)

// Type names a domain event. The segment before the dot is its category.
type Type string

const (
	CatalogSubmitted Type = "catalog.submitted"
	CatalogApproved  Type = "catalog.approved"
	CatalogRejected  Type = "catalog.rejected"
	ReportCreated    Type = "report.created"
	ReportResolved   Type = "report.resolved"
)

// Categories routed to separate topics.
const (
	CategoryCatalog = "catalog"
	CategoryReport  = "report"
)

// Event is the envelope written to every sink.
type Event struct {
	ID          string            `json:"id"`
	Type        Type              `json:"type"`
	Kind        string            `json:"kind"`
	SubjectID   uint              `json:"subject_id"`
	ActorID     uint              `json:"actor_id,omitempty"`
	RecipientID uint              `json:"recipient_id,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// New builds an event with a fresh ID stamped now.
func New(t Type, kind string, subjectID, actorID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Kind:       kind,
		SubjectID:  subjectID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Category returns the event's routing category.
func (e Event) Category() string {
	category, _, _ := strings.Cut(string(e.Type), ".")
	return category
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Name() string
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Name() string                         { return "none" }

// Multi fans an event out to several publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, p := range m {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

// Emit publishes evt after the owning transaction committed. Failures are
// logged and counted; they never reach the caller.
func Emit(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		observability.EventPublishFailures.WithLabelValues(p.Name()).Inc()
		slog.WarnContext(ctx, "failed to publish domain event",
			slog.String("event_id", evt.ID),
			slog.String("type", string(evt.Type)),
			slog.String("sink", p.Name()),
			slog.String("error", err.Error()),
		)
	}
}
