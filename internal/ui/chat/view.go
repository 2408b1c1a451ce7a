// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/summify-tui/internal/failure"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/ui/styles"
	"github.com/jeranaias/summify-tui/internal/util"
)

// Fixed copy shown by the screen.
const (
	Title        = "🎬 Summify"
	Subtitle     = "Get instant AI summaries of YouTube videos"
	LoadingText  = "Analyzing video and generating summary..."
	Tip          = "💡 Tip: Works best with videos that have captions/subtitles"
	busyInputMsg = "Waiting for the summary... press esc to cancel"
)

// TimeoutHint tells the user how long a request may run, rounded up to whole
// minutes.
func TimeoutHint(timeout time.Duration) string {
	minutes := int(math.Ceil(timeout.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("This may take up to %d %s for longer videos", minutes, unit)
}

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderTip(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	right := m.renderBackend()
	inner := m.width - m.theme.Header.GetHorizontalFrameSize()

	left := m.theme.HeaderTitle.Render(Title) + "  " + m.theme.HeaderSubtitle.Render(Subtitle)
	if lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		left = m.theme.HeaderTitle.Render(Title)
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderBackend() string {
	switch m.backend {
	case backendOnline:
		return m.theme.Online.Render("● online")
	case backendOffline:
		return m.theme.Offline.Render("● offline")
	}
	if m.health == nil {
		return ""
	}
	return m.theme.StatusLabel.Render("○ checking")
}

// =============================================================================
// MESSAGES
// =============================================================================

func (m Model) renderMessages() string {
	var b strings.Builder
	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderMessage(msg model.Message) string {
	width := m.contentWidth()

	if msg.IsUser() {
		label := m.theme.SenderUser.Render(msg.Sender.DisplayName())
		body := m.theme.UserBubble.Width(width - 1).Render(msg.Text)
		return label + "\n" + body
	}

	label := m.theme.SenderBot.Render(msg.Sender.DisplayName())
	if isFailureNotice(msg.Text) {
		return label + "\n" + m.theme.ErrorBubble.Width(width-1).Render(msg.Text)
	}
	return label + "\n" + m.theme.BotBubble.Width(width-1).Render(styles.RenderMarkdown(m.renderer, msg.Text))
}

// isFailureNotice reports whether text is a classified failure notice.
func isFailureNotice(text string) bool {
	return strings.HasPrefix(text, failure.Glyph)
}

func (m Model) renderLoading() string {
	line := m.spinner.View() + " " + m.theme.LoadingText.Render(LoadingText)
	hint := TimeoutHint(m.endpoint.Timeout)
	if sess, ok := m.orch.Current(); ok {
		hint += fmt.Sprintf(" (%s left)", sess.Remaining(time.Now()).Round(time.Second))
	}
	hint = m.theme.LoadingHint.Render(hint)
	return m.theme.SenderBot.Render(model.SenderBot.DisplayName()) + "\n" +
		m.theme.BotBubble.Width(m.contentWidth()-1).Render(line+"\n"+hint)
}

// =============================================================================
// INPUT AND FOOTER
// =============================================================================

func (m Model) renderInput() string {
	var content string
	if m.busy {
		content = m.theme.InputHint.Render("⏳ " + busyInputMsg)
	} else {
		content = m.input.View()
	}
	return m.theme.InputContainer.Width(m.width).Render(content)
}

func (m Model) renderTip() string {
	return m.theme.InputHint.Render(util.TruncateWidth(Tip, m.width))
}

func (m Model) renderStatusBar() string {
	inner := m.width - m.theme.StatusBar.GetHorizontalFrameSize()

	env := m.endpoint.Environment
	left := m.theme.StatusLabel.Render("Environment: ") +
		m.theme.Env(env).Render(env) +
		m.theme.StatusLabel.Render("  API: ")
	urlRoom := inner - lipgloss.Width(left)
	if urlRoom < 0 {
		urlRoom = 0
	}
	left += m.theme.StatusValue.Render(util.TruncateWidth(m.endpoint.BaseURL, urlRoom))

	var right string
	if m.notice != "" {
		right = m.theme.Notice.Render(m.notice)
	} else {
		right = m.renderShortcuts()
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		right = ""
		gap = inner - lipgloss.Width(left)
		if gap < 0 {
			gap = 0
		}
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderShortcuts() string {
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
