// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/orchestrator"
	"github.com/jeranaias/summify-tui/internal/ui/styles"
	"github.com/jeranaias/summify-tui/internal/util"
)

// Placeholder is shown in the empty input field.
const Placeholder = "Paste YouTube URL here (youtube.com or youtu.be)..."

// Fixed rows around the viewport: header, input border, input, tip, footer.
const chromeHeight = 5

// backendState is the last known health of the summarization backend.
type backendState int

const (
	backendUnknown backendState = iota
	backendOnline
	backendOffline
)

// Options configures a chat Model.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	// Health is optional; without it the header shows no backend status.
	Health HealthChecker
	Theme  *styles.Theme
	Logger zerolog.Logger
	// Context bounds submissions and health checks. Defaults to Background.
	Context context.Context
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx    context.Context
	orch   *orchestrator.Orchestrator
	store  *conversation.Store
	health HealthChecker
	theme  *styles.Theme
	log    zerolog.Logger
	keys   KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// Snapshot of the store, refreshed on every StoreEventMsg.
	messages []model.Message
	busy     bool
	// history is the rendered transcript, rebuilt when messages or width change.
	history string

	endpoint config.Endpoint
	backend  backendState

	notice    string
	noticeSeq int
}

// New creates the chat screen for the orchestrator's store.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeDark)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = Placeholder
	ti.CharLimit = 2048
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	store := opts.Orchestrator.Store()
	return Model{
		ctx:      ctx,
		orch:     opts.Orchestrator,
		store:    store,
		health:   opts.Health,
		theme:    theme,
		log:      opts.Logger,
		keys:     DefaultKeyMap(),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		messages: store.Messages(),
		busy:     store.IsBusy(),
		endpoint: opts.Orchestrator.Endpoint(),
	}
}

// Init starts the cursor blink and the first health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, HealthCmd(m.ctx, m.health))
}

// Busy reports whether the screen is showing the loading indicator.
func (m Model) Busy() bool {
	return m.busy
}

// InputValue returns the current text in the input field.
func (m Model) InputValue() string {
	return m.input.Value()
}

// Notice returns the transient footer notice, if any.
func (m Model) Notice() string {
	return m.notice
}

// contentWidth is the usable width for message bubbles.
func (m Model) contentWidth() int {
	w := m.width - 2
	if w < styles.MinMarkdownWidth {
		w = styles.MinMarkdownWidth
	}
	return w
}

// resize applies a new terminal size.
func (m *Model) resize(width, height int) {
	widthChanged := width != m.width
	m.width = width
	m.height = height

	vpHeight := height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - util.StringWidth(m.input.Prompt) - 1

	if widthChanged || m.renderer == nil {
		r, err := styles.NewMarkdownRenderer(m.contentWidth()-4, m.theme.IsDark)
		if err != nil {
			m.log.Warn().Err(err).Msg("markdown renderer unavailable, showing raw text")
			r = nil
		}
		m.renderer = r
	}
	m.ready = true
	m.rebuildHistory()
}

// sync pulls the latest snapshot from the store.
func (m *Model) sync() {
	m.messages = m.store.Messages()
	m.busy = m.store.IsBusy()
	m.rebuildHistory()
}

func (m *Model) rebuildHistory() {
	if !m.ready {
		return
	}
	m.history = m.renderMessages()
	m.refreshViewport(true)
}

// refreshViewport re-sets the viewport content. With follow unset it only
// stays on the tail if the user had not scrolled away.
func (m *Model) refreshViewport(follow bool) {
	follow = follow || m.viewport.AtBottom()
	content := m.history
	if m.busy {
		content += "\n" + m.renderLoading()
	}
	m.viewport.SetContent(content)
	if follow {
		m.viewport.GotoBottom()
	}
}

// setNotice shows msg in the footer until it expires.
func (m *Model) setNotice(msg string) tea.Cmd {
	m.noticeSeq++
	m.notice = msg
	return expireNotice(m.noticeSeq)
}
