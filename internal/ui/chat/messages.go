// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/orchestrator"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StoreEventMsg relays a conversation store event onto the event loop.
type StoreEventMsg struct {
	Event conversation.Event
}

// SubmitDoneMsg is sent when an orchestrator Submit call returns.
type SubmitDoneMsg struct {
	Outcome orchestrator.Outcome
}

// HealthMsg reports the result of a backend health check.
type HealthMsg struct {
	Online  bool
	Message string
	Err     error
}

// ClearInputMsg asks the screen to empty the input field.
type ClearInputMsg struct{}

// EndpointChangedMsg is sent after a config reload changes the endpoint.
type EndpointChangedMsg struct {
	Endpoint config.Endpoint
}

// CopiedMsg reports the result of a clipboard copy.
type CopiedMsg struct {
	Err error
}

// noticeExpiredMsg clears the footer notice with the given sequence number.
type noticeExpiredMsg struct {
	seq int
}
