package ports

import "gridwar/internal/domain/game"

// EventPublisher pushes committed domain events to out-of-core observers.
// Publish must never block or gate the commit that produced the event.
type EventPublisher interface {
	Publish(events []game.DomainEvent)
}
