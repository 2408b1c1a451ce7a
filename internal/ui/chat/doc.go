// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea chat screen for summify.
//
// The screen never owns conversation state. It renders whatever the
// conversation store holds, forwards submissions to the orchestrator, and
// redraws when the store publishes an event. Store events arrive from other
// goroutines through Program.Send, so every mutation is observed on the
// Bubble Tea event loop.
package chat
