// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jeranaias/summify-tui/internal/failure"
)

// Cancellation causes attached to a session's context.
var (
	ErrDeadlineElapsed = errors.New("submission deadline elapsed")
	ErrUserCancelled   = errors.New("submission cancelled by user")
)

// newSessionID is a test seam.
var newSessionID = func() string { return uuid.NewString() }

// Session is one accepted submission. At most one is alive at a time.
type Session struct {
	ID       string
	URL      string
	Started  time.Time
	Deadline time.Time

	cancel context.CancelCauseFunc
}

// Remaining returns the time left before the deadline, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// =============================================================================
// OUTCOME
// =============================================================================

// Status is how a Submit call ended.
type Status int

const (
	// StatusIgnored means the input was dropped: busy, or empty after trimming.
	StatusIgnored Status = iota
	// StatusRejected means the input was not a YouTube URL.
	StatusRejected
	// StatusSucceeded means a summary was appended.
	StatusSucceeded
	// StatusFailed means a classified failure notice was appended.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusRejected:
		return "rejected"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome reports what a Submit call did.
type Outcome struct {
	Status Status

	// Kind is set for StatusRejected and StatusFailed.
	Kind failure.Kind

	// Message is the bot text appended: the summary, or the failure notice.
	Message string

	SessionID string
	Elapsed   time.Duration
}

// OK reports whether a summary was produced.
func (o Outcome) OK() bool {
	return o.Status == StatusSucceeded
}
