// v1
// internal/actionlog/actionlog.go
package actionlog

import (
	"io"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/metrics"
)

// ActorUser is the single actor recorded on every entry. The system has
// no authentication, so all actions are attributed to this constant.
const ActorUser = "user"

// Entry is one immutable record of a device action. Entries are created
// by Record and never edited or removed afterwards.
type Entry struct {
	ID        string    `json:"id" msgpack:"id"`
	DeviceID  string    `json:"deviceId" msgpack:"deviceId"`
	Action    string    `json:"action" msgpack:"action"`
	User      string    `json:"user" msgpack:"user"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// Log is the append-only action history. Every recorded entry is also
// published on the event bus so live views update without polling. Safe
// for concurrent use.
type Log struct {
	log *slog.Logger
	bus *bus.Bus

	mu      sync.RWMutex
	entries []Entry
}

// New wires an empty action log that publishes entries on the supplied
// bus. A nil logger is replaced with a no-op logger.
func New(b *bus.Bus, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Log{log: logger, bus: b}
}

// Record appends a new entry stamped with the current time, publishes it
// as a log event, and returns it. The append happens before the publish
// so subscribers reading the log during delivery already see the entry.
func (l *Log) Record(deviceID, action string) Entry {
	entry := Entry{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		Action:    action,
		User:      ActorUser,
		Timestamp: time.Now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	total := len(l.entries)
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Publish(bus.Event{Kind: bus.KindLog, Payload: entry})
	}

	metrics.IncActionRecorded()
	l.log.Info("action_recorded",
		slog.String("device", deviceID),
		slog.String("action", action),
		slog.Int("entries", total),
	)
	return entry
}

// ByDevice returns the entries recorded for one device, preserving
// insertion order. The result is a fresh slice safe for the caller to
// keep.
func (l *Log) ByDevice(deviceID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, entry := range l.entries {
		if entry.DeviceID == deviceID {
			out = append(out, entry)
		}
	}
	return out
}

// All returns a copy of the full history in insertion order.
func (l *Log) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
