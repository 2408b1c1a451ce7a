// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages.
package model

import "strings"

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Summify"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Greeting is the canonical first message of every conversation.
const Greeting = "Hi! Paste any YouTube URL and I'll summarize it for you. 📺"

// Message is a single chat turn. It is a value type and is never mutated.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// UserMessage creates a message sent by the user.
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// BotMessage creates a message sent by the bot.
func BotMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot}
}

// GreetingMessage returns the canonical greeting.
func GreetingMessage() Message {
	return BotMessage(Greeting)
}

// IsUser reports whether the message came from the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot reports whether the message came from the bot.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// Preview returns the first line of the message, truncated to maxLen runes.
func (m Message) Preview(maxLen int) string {
	first := m.Text
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	runes := []rune(first)
	if maxLen <= 0 || len(runes) <= maxLen {
		return first
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
