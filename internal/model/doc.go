// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages.
//
// A Message is a plain value: once created it is never edited, and it has no
// identity beyond its position in a conversation.
//
// # Key Types
//
//   - Message: Single chat turn with text and sender
//   - Sender: Who produced the message (user or bot)
//
// # Usage
//
//	msg := model.UserMessage("https://youtu.be/abc")
//	reply := model.BotMessage(summary)
package model
