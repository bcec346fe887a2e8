// services/event_hub.go - In-process progression events
package services

import (
	"sync"
	"time"

	"discjourney/progression"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	EventTierUp   EventType = "tier_up"
	EventUnlocked EventType = "unlocked"
)

// Event is pushed to a user's connected clients once and then forgotten.
type Event struct {
	ID        string                   `json:"id"`
	Type      EventType                `json:"type"`
	UserID    uint                     `json:"user_id"`
	CreatedAt time.Time                `json:"created_at"`
	TierUp    *progression.TierUpEvent `json:"tier_up,omitempty"`
	Unlocked  []string                 `json:"unlocked,omitempty"`
}

// EventHub fans events out to per-user subscribers. Slow subscribers lose
// events rather than block the publisher.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[uint]map[string]chan Event
	buffer int
	log    *zap.Logger
}

func NewEventHub(buffer int, log *zap.Logger) *EventHub {
	if buffer < 1 {
		buffer = 1
	}
	return &EventHub{
		subs:   make(map[uint]map[string]chan Event),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a listener for userID. cancel must be called when
// the listener goes away; it closes the channel.
func (h *EventHub) Subscribe(userID uint) (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[string]chan Event)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers counts the listeners of one user.
func (h *EventHub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Publish delivers ev to every subscriber of ev.UserID. ID and CreatedAt
// are filled in when empty.
func (h *EventHub) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
			h.log.Debug("dropping event for slow subscriber",
				zap.Uint("user_id", ev.UserID),
				zap.String("type", string(ev.Type)))
		}
	}
}

// PublishResult emits the events a mutation produced.
func (h *EventHub) PublishResult(userID uint, res progression.Result) {
	if !res.Applied {
		return
	}
	if len(res.NewlyUnlocked) > 0 {
		h.Publish(Event{Type: EventUnlocked, UserID: userID, Unlocked: res.NewlyUnlocked})
	}
	if res.TierUp != nil {
		h.Publish(Event{Type: EventTierUp, UserID: userID, TierUp: res.TierUp})
	}
}
