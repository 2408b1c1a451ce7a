// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/summify-tui/internal/orchestrator"
)

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case StoreEventMsg:
		return m.handleStoreEvent()

	case SubmitDoneMsg:
		m.logOutcome(msg.Outcome)
		return m, nil

	case ClearInputMsg:
		m.input.Reset()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport(false)
		return m, cmd

	case HealthMsg:
		return m.handleHealth(msg)

	case EndpointChangedMsg:
		m.endpoint = msg.Endpoint
		m.backend = backendUnknown
		return m, tea.Batch(
			m.setNotice("Switched to "+msg.Endpoint.Environment),
			HealthCmd(m.ctx, m.health),
		)

	case CopiedMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("clipboard write failed")
			return m, m.setNotice("Copy failed: clipboard unavailable")
		}
		return m, m.setNotice("Copied to clipboard")

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.orch.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.busy && m.orch.Cancel() {
			return m, m.setNotice("Cancelling request...")
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		// Store listeners post back into the program, so mutate off the loop.
		store := m.store
		return m, func() tea.Msg {
			store.Reset()
			return nil
		}

	case key.Matches(msg, m.keys.Copy):
		last, ok := m.store.LastBot()
		if !ok {
			return m, nil
		}
		return m, CopyCmd(last.Text)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		if m.busy {
			return m, nil
		}
		return m, SubmitCmd(m.ctx, m.orch, m.input.Value())
	}

	// The input is disabled while a request is in flight.
	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleStoreEvent() (tea.Model, tea.Cmd) {
	wasBusy := m.busy
	m.sync()

	switch {
	case m.busy && !wasBusy:
		m.input.Blur()
		return m, m.spinner.Tick
	case !m.busy && wasBusy:
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	if msg.Online {
		m.backend = backendOnline
		return m, nil
	}
	m.backend = backendOffline
	if msg.Err != nil {
		m.log.Debug().Err(msg.Err).Str("base_url", m.endpoint.BaseURL).Msg("health check failed")
	}
	return m, nil
}

func (m Model) logOutcome(out orchestrator.Outcome) {
	ev := m.log.Debug()
	if out.Status == orchestrator.StatusFailed {
		ev = m.log.Warn()
	}
	ev.Str("session", out.SessionID).
		Stringer("status", out.Status).
		Str("kind", out.Kind.String()).
		Dur("elapsed", out.Elapsed).
		Msg("submission finished")
}
