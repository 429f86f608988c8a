// Package realtime fans collection change notifications out to websocket
// subscribers. Events are advisory: each one tells the client the named
// collection changed and should be re-queried as a fresh snapshot, never
// applied as a delta.
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Collection names carried on change events.
const (
	CollectionTeachers = "teachers"
	CollectionClasses  = "classes"
	CollectionStudents = "students"
	CollectionExams    = "exams"
)

// Event notifies subscribers that a collection changed.
type Event struct {
	Collection string `json:"collection"`
	TeacherID  string `json:"teacher_id,omitempty"`
	ClassID    string `json:"class_id,omitempty"`
}

// Publisher is the write side of the change feed. Services publish after every
// successful mutation; failures never propagate to the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type envelope struct {
	Source string `json:"source"`
	Event  Event  `json:"event"`
}

// Subscription is one registered listener. Release must be called exactly once
// when the owning connection goes away.
type Subscription struct {
	C      chan Event
	hub    *Hub
	filter filter
	once   sync.Once
}

type filter struct {
	collections map[string]struct{}
	teacherID   string
	admin       bool
}

// Release detaches the subscription from the hub and closes its channel.
func (s *Subscription) Release() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub tracks active subscriptions and bridges events through NATS so every API
// node sees writes performed by its peers. A nil NATS connection degrades to
// single-node fan-out.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	nats    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
}

// NewHub constructs the hub. nodeID distinguishes this node's own NATS echoes.
func NewHub(natsConn *nats.Conn, subject, nodeID string, logger zerolog.Logger) *Hub {
	return &Hub{
		subs:    make(map[*Subscription]struct{}),
		nats:    natsConn,
		subject: subject,
		nodeID:  nodeID,
		logger:  logger.With().Str("component", "realtime_hub").Logger(),
	}
}

// Start wires the NATS bridge and tears it down when ctx is cancelled.
func (h *Hub) Start(ctx context.Context) error {
	if h.nats == nil || h.subject == "" {
		return nil
	}

	sub, err := h.nats.Subscribe(h.subject, func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			h.logger.Warn().Err(err).Msg("dropping malformed change event")
			return
		}
		if env.Source == h.nodeID {
			return
		}
		h.broadcast(env.Event)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to release nats subscription")
		}
	}()

	return nil
}

// Publish broadcasts locally and forwards through NATS when available.
func (h *Hub) Publish(ctx context.Context, event Event) {
	h.broadcast(event)

	if h.nats == nil || h.subject == "" {
		return
	}

	payload, err := json.Marshal(envelope{Source: h.nodeID, Event: event})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode change event")
		return
	}
	if err := h.nats.Publish(h.subject, payload); err != nil {
		h.logger.Warn().Err(err).Str("collection", event.Collection).Msg("failed to forward change event")
	}
}

// Subscribe registers a listener. Admin subscribers see every event; teacher
// subscribers only see events for their own documents. An empty collection
// list subscribes to all collections.
func (h *Hub) Subscribe(collections []string, teacherID string, admin bool) *Subscription {
	f := filter{teacherID: teacherID, admin: admin}
	if len(collections) > 0 {
		f.collections = make(map[string]struct{}, len(collections))
		for _, name := range collections {
			name = strings.TrimSpace(strings.ToLower(name))
			if name != "" {
				f.collections[name] = struct{}{}
			}
		}
	}

	sub := &Subscription{C: make(chan Event, 16), hub: h, filter: f}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.C)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.filter.matches(event) {
			continue
		}
		select {
		case sub.C <- event:
		default:
			// Slow consumer; it will re-query on its next event anyway.
		}
	}
}

func (f filter) matches(event Event) bool {
	if f.collections != nil {
		if _, ok := f.collections[event.Collection]; !ok {
			return false
		}
	}
	if f.admin {
		return true
	}
	return event.TeacherID != "" && event.TeacherID == f.teacherID
}

// NopPublisher discards events; used where no hub is wired.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) {}
