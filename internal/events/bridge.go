// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/conversation"
)

// DefaultQueueSize bounds events waiting to be published.
const DefaultQueueSize = 256

// =============================================================================
// BRIDGE
// =============================================================================

// Bridge publishes conversation events to a watermill topic.
type Bridge struct {
	pub   message.Publisher
	sub   message.Subscriber
	topic string
	log   zerolog.Logger
	now   func() time.Time

	// extra resources closed after pub and sub, e.g. the redis client
	closers []io.Closer
	// ignoreCloseErr filters expected errors from shared resources closed twice
	ignoreCloseErr func(error) bool

	queue chan Envelope
	wg    sync.WaitGroup

	mu        sync.Mutex
	detachers []func()
	closed    bool
}

// NewBridge creates a bridge over an existing publisher/subscriber pair and
// starts its publish loop. sub may be nil if Subscribe is never used.
func NewBridge(pub message.Publisher, sub message.Subscriber, topic string, log zerolog.Logger, closers ...io.Closer) *Bridge {
	b := &Bridge{
		pub:     pub,
		sub:     sub,
		topic:   topic,
		log:     log.With().Str("component", "events").Str("topic", topic).Logger(),
		now:     time.Now,
		closers: closers,
		queue:   make(chan Envelope, DefaultQueueSize),
	}

	b.wg.Add(1)
	go b.publishLoop()
	return b
}

// Topic returns the topic events are published on.
func (b *Bridge) Topic() string {
	return b.topic
}

// Attach subscribes the bridge to store. Every later mutation is published.
func (b *Bridge) Attach(store *conversation.Store) {
	unsubscribe := store.Subscribe(b.enqueue)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		unsubscribe()
		return
	}
	b.detachers = append(b.detachers, unsubscribe)
}

// enqueue is the store listener. It never blocks.
func (b *Bridge) enqueue(ev conversation.Event) {
	env := FromEvent(ev, b.now())

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.queue <- env:
	default:
		b.log.Warn().Str("type", string(ev.Type)).Msg("event queue full, dropping event")
	}
}

// Publish sends one envelope synchronously.
func (b *Bridge) Publish(env Envelope) error {
	msg, err := env.Encode()
	if err != nil {
		return err
	}
	if err := b.pub.Publish(b.topic, msg); err != nil {
		return errors.Wrapf(err, "publish to %s", b.topic)
	}
	return nil
}

func (b *Bridge) publishLoop() {
	defer b.wg.Done()
	for env := range b.queue {
		if err := b.Publish(env); err != nil {
			b.log.Warn().Err(err).Str("type", string(env.Type)).Msg("failed to publish event")
			continue
		}
		b.log.Trace().Str("type", string(env.Type)).Int("len", env.Len).Msg("event published")
	}
}

// Subscribe returns decoded events published on the topic until ctx is done.
// A message is acked once its envelope has been received from the channel.
// Undecodable messages are acked and skipped.
func (b *Bridge) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	if b.sub == nil {
		return nil, errors.New("events: bridge has no subscriber")
	}
	msgs, err := b.sub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe to %s", b.topic)
	}

	out := make(chan Envelope)
	go func() {
		defer close(out)
		for msg := range msgs {
			env, err := Decode(msg)
			if err != nil {
				msg.Ack()
				b.log.Warn().Err(err).Msg("failed to decode event")
				continue
			}
			select {
			case out <- env:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Follow calls fn for every envelope on the topic until ctx is done or the
// backend is closed. The returned channel is closed after the last call.
func (b *Bridge) Follow(ctx context.Context, fn func(Envelope)) (<-chan struct{}, error) {
	envs, err := b.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for env := range envs {
			fn(env)
		}
	}()
	return done, nil
}

// Close detaches from all stores, flushes queued events and releases the backend.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	detachers := b.detachers
	b.detachers = nil
	close(b.queue)
	b.mu.Unlock()

	for _, detach := range detachers {
		detach()
	}
	b.wg.Wait()

	var firstErr error
	keep := func(err error) {
		if err == nil || (b.ignoreCloseErr != nil && b.ignoreCloseErr(err)) {
			return
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	keep(b.pub.Close())
	if b.sub != nil && any(b.sub) != any(b.pub) {
		keep(b.sub.Close())
	}
	for _, c := range b.closers {
		keep(c.Close())
	}
	return firstErr
}
