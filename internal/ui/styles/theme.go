// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeDark  = "dark"
	ModeLight = "light"
	ModeAuto  = "auto"
)

// Theme holds all the styled components for the application.
type Theme struct {
	IsDark bool

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	Online         lipgloss.Style
	Offline        lipgloss.Style

	// Messages
	SenderUser  lipgloss.Style
	SenderBot   lipgloss.Style
	UserBubble  lipgloss.Style
	BotBubble   lipgloss.Style
	ErrorBubble lipgloss.Style

	// Loading indicator
	Spinner     lipgloss.Style
	LoadingText lipgloss.Style
	LoadingHint lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	InputHint      lipgloss.Style

	// Footer
	StatusBar    lipgloss.Style
	StatusLabel  lipgloss.Style
	StatusValue  lipgloss.Style
	EnvProd      lipgloss.Style
	EnvDev       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Notice       lipgloss.Style
}

// ResolveDark decides the background for mode. "auto" asks the terminal.
func ResolveDark(mode string) bool {
	switch mode {
	case ModeLight:
		return false
	case ModeAuto:
		return termenv.HasDarkBackground()
	default:
		return true
	}
}

// NewTheme creates a theme for mode ("dark", "light" or "auto") and points
// lipgloss adaptive colors at the same background.
func NewTheme(mode string) *Theme {
	isDark := ResolveDark(mode)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)
	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Online = lipgloss.NewStyle().Foreground(Emerald)
	t.Offline = lipgloss.NewStyle().Foreground(Rose)

	t.SenderUser = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.SenderBot = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		PaddingLeft(1).
		MarginBottom(1)
	t.UserBubble = bubble.BorderForeground(UserBubbleBorder).Foreground(TextPrimary)
	t.BotBubble = bubble.BorderForeground(BotBubbleBorder).Foreground(TextPrimary)
	t.ErrorBubble = bubble.BorderForeground(ErrorBubbleBorder).Foreground(Rose)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.LoadingText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.LoadingHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.InputHint = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusLabel = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusValue = lipgloss.NewStyle().Foreground(TextPrimary)
	t.EnvProd = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.EnvDev = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Notice = lipgloss.NewStyle().Foreground(Amber)

	return t
}

// Env returns the badge style for an environment name.
func (t *Theme) Env(environment string) lipgloss.Style {
	if environment == "production" {
		return t.EnvProd
	}
	return t.EnvDev
}
