// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"sync"

	"github.com/jeranaias/summify-tui/internal/model"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventType identifies the mutation that produced an Event.
type EventType string

const (
	EventAppended    EventType = "appended"
	EventReset       EventType = "reset"
	EventBusyChanged EventType = "busy_changed"
)

// Event describes one mutation of the store.
type Event struct {
	Type EventType
	// Message is the appended message, or the greeting after a reset.
	Message model.Message
	// Len is the history length after the mutation.
	Len  int
	Busy bool
}

// Listener is notified after every mutation.
type Listener func(Event)

// =============================================================================
// STORE
// =============================================================================

// Store is the conversation history plus the busy flag.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages []model.Message
	busy     bool

	listenersMu sync.Mutex
	listeners   []*subscription
}

type subscription struct {
	fn Listener
}

// New creates a store holding only the greeting.
func New() *Store {
	return &Store{
		messages: []model.Message{model.GreetingMessage()},
	}
}

// Append adds msg to the end of the history.
func (s *Store) Append(msg model.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	ev := Event{Type: EventAppended, Message: msg, Len: len(s.messages), Busy: s.busy}
	s.mu.Unlock()

	s.notify(ev)
}

// Reset discards the history and leaves only the greeting.
// The busy flag and any in-flight submission are left alone.
func (s *Store) Reset() {
	greeting := model.GreetingMessage()

	s.mu.Lock()
	s.messages = []model.Message{greeting}
	ev := Event{Type: EventReset, Message: greeting, Len: 1, Busy: s.busy}
	s.mu.Unlock()

	s.notify(ev)
}

// SetBusy sets the busy flag. Listeners are only notified on change.
func (s *Store) SetBusy(busy bool) {
	s.mu.Lock()
	if s.busy == busy {
		s.mu.Unlock()
		return
	}
	s.busy = busy
	ev := Event{Type: EventBusyChanged, Len: len(s.messages), Busy: busy}
	s.mu.Unlock()

	s.notify(ev)
}

// IsBusy reports whether a submission is in flight.
func (s *Store) IsBusy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Messages returns a copy of the history.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message.
func (s *Store) Last() (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return model.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// LastBot returns the most recent bot message.
func (s *Store) LastBot() (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsBot() {
			return s.messages[i], true
		}
	}
	return model.Message{}, false
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn and returns a function that removes it.
// Listeners run on the mutating goroutine, after the store lock is released,
// in subscription order. A listener may read the store but must not mutate it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.listenersMu.Lock()
	s.listeners = append(s.listeners, sub)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, l := range s.listeners {
				if l == sub {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(ev Event) {
	s.listenersMu.Lock()
	subs := make([]*subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
