// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/model"
)

// Envelope is the wire form of a conversation.Event.
type Envelope struct {
	// ID is the watermill message UUID; not part of the payload.
	ID string `json:"-"`

	Type   conversation.EventType `json:"type"`
	Sender model.Sender           `json:"sender,omitempty"`
	Text   string                 `json:"text,omitempty"`
	Len    int                    `json:"len"`
	Busy   bool                   `json:"busy"`
	At     time.Time              `json:"at"`
}

// FromEvent builds an envelope for ev observed at at.
func FromEvent(ev conversation.Event, at time.Time) Envelope {
	env := Envelope{
		Type: ev.Type,
		Len:  ev.Len,
		Busy: ev.Busy,
		At:   at.UTC(),
	}
	if ev.Type != conversation.EventBusyChanged {
		env.Sender = ev.Message.Sender
		env.Text = ev.Message.Text
	}
	return env
}

// Encode turns the envelope into a watermill message with a fresh UUID.
func (e Envelope) Encode() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "encode event")
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("type", string(e.Type))
	return msg, nil
}

// Decode parses a watermill message produced by Encode.
func Decode(msg *message.Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return Envelope{}, errors.Wrapf(err, "decode event %s", msg.UUID)
	}
	env.ID = msg.UUID
	return env, nil
}
