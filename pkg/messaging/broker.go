package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Topics carried by the broker. Delivery is best-effort, at-least-once:
// a missed change event only leaves a subscriber with a stale availability
// view until its cache entry expires, never a capacity violation, because
// admission always re-checks occupancy at commit time.
const (
	TopicBookingChanged = "bookings.changed"
	TopicBookingCreated = "bookings.created"
)

// BookingChanged identifies the (date, time) occupancy key whose
// availability must be recomputed by any open view.
type BookingChanged struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
