// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MinMarkdownWidth keeps glamour from wrapping into a single column.
const MinMarkdownWidth = 20

// NewMarkdownRenderer returns a glamour renderer wrapping at width.
func NewMarkdownRenderer(width int, dark bool) (*glamour.TermRenderer, error) {
	if width < MinMarkdownWidth {
		width = MinMarkdownWidth
	}
	style := "dark"
	if !dark {
		style = "light"
	}
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
}

// RenderMarkdown renders content, falling back to the raw text when r is nil
// or rendering fails.
func RenderMarkdown(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
