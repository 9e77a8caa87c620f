// Package notifier propagates booking ledger mutations to whoever holds
// a derived availability view. Delivery is best-effort and at-least-once:
// a dropped signal leaves a view stale until its cache entry expires,
// never over capacity, because admission re-checks occupancy at commit
// time regardless.
package notifier

import (
	"context"
	"encoding/json"

	"github.com/brickmart/booking-api/pkg/logger"
	"github.com/brickmart/booking-api/pkg/messaging"
)

// Observer is anything holding availability state derived from the
// ledger; Invalidate tells it to recompute the given date on next read.
type Observer interface {
	Invalidate(date string)
}

type Notifier struct {
	broker    messaging.Broker
	observers []Observer
	logger    *logger.Logger
}

func NewNotifier(broker messaging.Broker, logger *logger.Logger) *Notifier {
	return &Notifier{
		broker: broker,
		logger: logger,
	}
}

// Register must be called before Start; the notifier is not safe for
// concurrent registration.
func (n *Notifier) Register(obs Observer) {
	n.observers = append(n.observers, obs)
}

// BookingChanged fans the change out. Local observers are invalidated
// synchronously so the committing process reads its own write on the
// very next availability call; the broker carries the signal to other
// instances. A publish failure is logged and swallowed.
func (n *Notifier) BookingChanged(ctx context.Context, date, timeOfDay string) {
	for _, obs := range n.observers {
		obs.Invalidate(date)
	}

	if n.broker == nil {
		return
	}
	event := messaging.BookingChanged{Date: date, Time: timeOfDay}
	if err := n.broker.Publish(ctx, messaging.TopicBookingChanged, event); err != nil {
		n.logger.Error(err, "failed to publish booking change", "date", date, "time", timeOfDay)
	}
}

// Start consumes change events published by other service instances and
// relays them to local observers. Created events carry the same date and
// time fields as change events, so both topics feed the same
// invalidation path. Blocks until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	if n.broker == nil {
		<-ctx.Done()
		return nil
	}

	changed, err := n.broker.Subscribe(ctx, messaging.TopicBookingChanged)
	if err != nil {
		return err
	}
	created, err := n.broker.Subscribe(ctx, messaging.TopicBookingCreated)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-changed:
			if !ok {
				return nil
			}
			n.relay(payload)
		case payload, ok := <-created:
			if !ok {
				return nil
			}
			n.relay(payload)
		}
	}
}

func (n *Notifier) relay(payload []byte) {
	var event messaging.BookingChanged
	if err := json.Unmarshal(payload, &event); err != nil {
		n.logger.Error(err, "failed to decode booking change event")
		return
	}
	for _, obs := range n.observers {
		obs.Invalidate(event.Date)
	}
}
