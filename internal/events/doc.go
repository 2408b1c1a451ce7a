// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events mirrors conversation store mutations onto a watermill topic.
//
// Each store Event becomes one JSON message:
//
//	{"type":"appended","sender":"bot","text":"...","len":3,"busy":false,"at":"2025-01-02T03:04:05Z"}
//
// Two backends are supported: an in-process gochannel (a second renderer in
// the same process can follow the conversation) and Redis Streams (another
// process can, see `summify events tail`).
//
// Publishing happens on the bridge's own goroutine. A slow or broken backend
// costs dropped events and a log line; it never blocks or fails the store.
package events
