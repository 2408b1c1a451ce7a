// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/events"
	"github.com/jeranaias/summify-tui/internal/model"
)

// journalPreviewLen bounds the message text copied into a journal entry.
const journalPreviewLen = 120

// eventJournal follows the bridge and writes every conversation event to the
// log. Closing it closes the bridge.
type eventJournal struct {
	bridge *events.Bridge
	cancel context.CancelFunc
	done   <-chan struct{}
}

func startJournal(bridge *events.Bridge, log zerolog.Logger) (*eventJournal, error) {
	log = log.With().Str("component", "journal").Str("topic", bridge.Topic()).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	done, err := bridge.Follow(ctx, func(env events.Envelope) {
		journalEntry(log, env)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	return &eventJournal{bridge: bridge, cancel: cancel, done: done}, nil
}

func journalEntry(log zerolog.Logger, env events.Envelope) {
	evt := log.Info().
		Str("event_id", env.ID).
		Str("type", string(env.Type)).
		Int("len", env.Len)
	switch env.Type {
	case conversation.EventBusyChanged:
		evt = evt.Bool("busy", env.Busy)
	default:
		msg := model.Message{Sender: env.Sender, Text: env.Text}
		evt = evt.Str("sender", string(env.Sender)).Str("text", msg.Preview(journalPreviewLen))
	}
	evt.Time("at", env.At).Msg("conversation event")
}

// Close flushes pending events to the journal and releases the bridge.
func (j *eventJournal) Close() error {
	err := j.bridge.Close()
	j.cancel()
	<-j.done
	return err
}
