// v1
// internal/bus/bus.go
package bus

import (
	"io"
	"sync"

	"log/slog"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/metrics"
)

// EventKind tags the payload variant carried by an Event.
type EventKind string

const (
	// KindLog marks events carrying an action-log entry.
	KindLog EventKind = "log"
	// KindPowerSample marks events carrying a power sample.
	KindPowerSample EventKind = "powerSample"
)

// Event is the tagged envelope distributed to subscribers. Payload holds
// an actionlog.Entry for KindLog and a power.Sample for KindPowerSample;
// subscribers type-assert on the kind they care about.
type Event struct {
	Kind    EventKind
	Payload any
}

// Handler consumes one published event. Handlers run synchronously on
// the publisher's goroutine and must return promptly; anything slow
// should hand the event off to its own queue.
type Handler func(Event)

// Subscription identifies one registered handler so it can be removed
// later. The zero value is not usable; obtain instances from Subscribe.
type Subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers every published event to all current subscribers in
// subscription order. It is safe for concurrent use.
type Bus struct {
	log *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   []*Subscription
}

// New constructs an empty bus. A nil logger is replaced with a no-op
// logger so the bus can be used bare in tests.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Bus{log: logger}
}

// Subscribe registers a handler and returns its subscription handle.
// Nil handlers are ignored and yield a nil handle.
func (b *Bus) Subscribe(h Handler) *Subscription {
	if h == nil {
		b.log.Warn("bus_subscribe_nil_handler")
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{id: b.nextID, handler: h}
	b.subs = append(b.subs, sub)
	b.log.Info("bus_subscribed",
		slog.Uint64("subscription", sub.id),
		slog.Int("subscribers", len(b.subs)),
	)
	return sub
}

// Unsubscribe removes the handler behind the supplied handle. Unknown or
// nil handles are no-ops, so callers may unsubscribe defensively.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, registered := range b.subs {
		if registered.id != sub.id {
			continue
		}
		b.subs = append(b.subs[:i], b.subs[i+1:]...)
		b.log.Info("bus_unsubscribed",
			slog.Uint64("subscription", sub.id),
			slog.Int("subscribers", len(b.subs)),
		)
		return
	}
}

// Publish delivers the event synchronously to every subscriber present
// at call time, in subscription order. The subscriber list is copied up
// front, so handlers that subscribe or unsubscribe during delivery do
// not affect the current round. A panicking handler is recovered and
// logged; delivery continues with the remaining subscribers.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	metrics.IncBusEvent(string(evt.Kind))

	for _, sub := range subs {
		b.deliver(sub, evt)
	}
}

func (b *Bus) deliver(sub *Subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncBusHandlerPanic()
			b.log.Error("bus_handler_panic",
				slog.Uint64("subscription", sub.id),
				slog.String("kind", string(evt.Kind)),
				slog.Any("panic", r),
			)
		}
	}()
	sub.handler(evt)
}

// SubscriberCount reports the current number of registered handlers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
