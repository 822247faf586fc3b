package usecase

import (
	"context"
	"log/slog"

	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/port"
)

// publish sends domain events after a successful mutation. Events are
// best-effort notifications: a publish failure is logged and never rolls the
// committed state back.
func publish(ctx context.Context, logger *slog.Logger, publisher port.EventPublisher, events ...event.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("publish domain events", "count", len(events), "error", err)
	}
}
