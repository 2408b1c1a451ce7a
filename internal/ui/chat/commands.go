// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/summify-tui/internal/orchestrator"
	"github.com/jeranaias/summify-tui/internal/summarizer"
)

// noticeTTL is how long a footer notice stays visible.
const noticeTTL = 3 * time.Second

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// HealthChecker reports whether the summarization backend is up.
type HealthChecker interface {
	Health(ctx context.Context) (*summarizer.HealthResponse, error)
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// SubmitCmd runs one orchestrator submission off the event loop.
// Progress is observed through store events; the returned message only
// carries the final outcome.
func SubmitCmd(ctx context.Context, orch *orchestrator.Orchestrator, text string) tea.Cmd {
	return func() tea.Msg {
		return SubmitDoneMsg{Outcome: orch.Submit(ctx, text)}
	}
}

// HealthCmd checks the backend health endpoint.
func HealthCmd(ctx context.Context, h HealthChecker) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		resp, err := h.Health(ctx)
		if err != nil {
			return HealthMsg{Online: false, Err: err}
		}
		if resp == nil {
			return HealthMsg{Online: false}
		}
		return HealthMsg{Online: resp.OK(), Message: resp.Message}
	}
}

// CopyCmd writes text to the system clipboard.
func CopyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: clipboardWrite(text)}
	}
}

func expireNotice(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
