// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the summify TUI and REPL.

All colors use Lip Gloss AdaptiveColor. NewTheme fixes the background
(dark, light, or detected via termenv for "auto") so every adaptive color
and the glamour markdown style agree.

# Colors (colors.go)

  - Red - Brand, header title
  - Purple - Bot messages and the spinner
  - Cyan - User messages and key hints
  - Emerald / Rose - Backend online / offline, development badge / failures
  - Amber - Production badge

# Markdown (markdown.go)

Summaries come back as markdown. NewMarkdownRenderer builds a glamour
renderer for the current width; RenderMarkdown falls back to the raw text.

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	r, _ := styles.NewMarkdownRenderer(width, theme.IsDark)
	fmt.Println(theme.BotBubble.Render(styles.RenderMarkdown(r, summary)))
*/
package styles
