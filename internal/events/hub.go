// Package events owns the NATS connection's publish and subscribe surface.
// Every subscription in the process is registered through the Hub, so
// shutdown can unwind them in one place instead of chasing per-component
// subscriptions.
package events

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Handler receives the subject's trailing entity ID and the payload ID.
type Handler func(subjectID, payloadID uuid.UUID)

// Hub is the process-wide event fan-out point.
type Hub struct {
	nc *nats.Conn

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewHub(nc *nats.Conn) *Hub {
	return &Hub{nc: nc}
}

// Publish emits the payload ID on the given subject. Publish failures are
// logged, never propagated: events are best-effort by policy.
func (h *Hub) Publish(subject string, payloadID uuid.UUID) {
	if h == nil || h.nc == nil {
		return
	}
	if err := h.nc.Publish(subject, []byte(payloadID.String())); err != nil {
		slog.Warn("events: publish failed", "subject", subject, "err", err)
	}
}

// Subscribe registers a wildcard subscription. Messages whose subject tail or
// payload fail to parse as UUIDs are dropped.
func (h *Hub) Subscribe(pattern string, fn Handler) error {
	sub, err := h.nc.Subscribe(pattern, func(msg *nats.Msg) {
		parts := strings.Split(msg.Subject, ".")
		subjectID, err := uuid.Parse(parts[len(parts)-1])
		if err != nil {
			return
		}
		payloadID, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}
		fn(subjectID, payloadID)
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	return nil
}

// Close unsubscribes everything and drains the connection.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil {
			slog.Warn("events: unsubscribe failed", "subject", s.Subject, "err", err)
		}
	}
	if h.nc != nil {
		if err := h.nc.Drain(); err != nil {
			slog.Warn("events: drain failed", "err", err)
		}
	}
}
