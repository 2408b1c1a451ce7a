// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/failure"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/orchestrator"
	"github.com/jeranaias/summify-tui/internal/ui/chat"
	"github.com/jeranaias/summify-tui/internal/ui/styles"
	"github.com/jeranaias/summify-tui/internal/util"
)

// lineReader is the part of *liner.State the line-mode chat uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
	Close() error
}

type replConfig struct {
	orch   *orchestrator.Orchestrator
	reader lineReader
	out    io.Writer
	// markdown renders bot replies with glamour.
	markdown bool
	dark     bool
	copy     func(string) error
	// historyFile persists input history between runs when set.
	historyFile string
	log         zerolog.Logger
}

// repl is the line-mode chat. It prints from store events, so output
// follows the conversation exactly as the full-screen UI would show it.
type repl struct {
	orch        *orchestrator.Orchestrator
	store       *conversation.Store
	reader      lineReader
	out         io.Writer
	copy        func(string) error
	renderer    *glamour.TermRenderer
	historyFile string
	log         zerolog.Logger
	unsubscribe func()
}

func newREPL(cfg replConfig) *repl {
	r := &repl{
		orch:        cfg.orch,
		store:       cfg.orch.Store(),
		reader:      cfg.reader,
		out:         cfg.out,
		copy:        cfg.copy,
		historyFile: cfg.historyFile,
		log:         cfg.log,
	}
	if cfg.markdown {
		if renderer, err := styles.NewMarkdownRenderer(GetTerminalWidth()-4, cfg.dark); err == nil {
			r.renderer = renderer
		}
	}
	r.loadHistory()
	r.unsubscribe = r.store.Subscribe(r.onEvent)
	return r
}

// Run reads lines until /quit, Ctrl+C at the prompt, EOF or ctx ends.
func (r *repl) Run(ctx context.Context) error {
	r.printBanner()
	for _, msg := range r.store.Messages() {
		r.printMessage(msg)
	}

	for !contextDone(ctx) {
		input, err := r.reader.Prompt(PromptStyle.Render("summify> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return errors.Wrap(err, "read input")
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.reader.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}
		r.orch.Submit(ctx, input)
	}
	return nil
}

// Close stops printing store events, saves history and releases the reader.
func (r *repl) Close() error {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.saveHistory()
	return r.reader.Close()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// command runs a slash command and reports whether the chat should end.
func (r *repl) command(input string) (quit bool) {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/quit", "/exit", "/q":
		return true
	case "/clear", "/c":
		r.store.Reset()
	case "/copy":
		r.copyLast()
	case "/help", "/h", "/?":
		r.printHelp()
	default:
		fmt.Fprintf(r.out, "%s unknown command %s (try /help)\n", WarningStyle.Render("!"), name)
	}
	return false
}

func (r *repl) copyLast() {
	last, ok := r.store.LastBot()
	if !ok {
		return
	}
	if err := r.copy(last.Text); err != nil {
		fmt.Fprintf(r.out, "%s copy failed: %v\n", ErrorStyle.Render("✗"), err)
		return
	}
	fmt.Fprintf(r.out, "%s copied to clipboard\n", SuccessStyle.Render("✓"))
}

func (r *repl) printHelp() {
	rows := [][2]string{
		{"<url>", "summarize a YouTube video"},
		{"/clear", "clear the conversation"},
		{"/copy", "copy the last reply to the clipboard"},
		{"/help", "show this help"},
		{"/quit", "exit (also Ctrl+C at the prompt or Ctrl+D)"},
		{"Ctrl+C", "cancel a request in flight"},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s%s\n", LabelStyle.Render(row[0]), DimStyle.Render(row[1]))
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *repl) onEvent(ev conversation.Event) {
	switch ev.Type {
	case conversation.EventAppended:
		if ev.Message.IsBot() {
			r.printMessage(ev.Message)
		}
	case conversation.EventReset:
		fmt.Fprintln(r.out, DimStyle.Render("Chat cleared."))
		r.printMessage(ev.Message)
	case conversation.EventBusyChanged:
		if ev.Busy {
			fmt.Fprintln(r.out, DimStyle.Render("⏳ "+chat.LoadingText))
			fmt.Fprintln(r.out, DimStyle.Render("   "+chat.TimeoutHint(r.orch.Endpoint().Timeout)))
		}
	}
}

func (r *repl) printBanner() {
	ep := r.orch.Endpoint()
	fmt.Fprintf(r.out, "%s  %s\n", TitleStyle.Render(chat.Title), DimStyle.Render(chat.Subtitle))
	fmt.Fprintf(r.out, "%s %s  %s %s\n",
		DimStyle.Render("Environment:"), ValueStyle.Render(ep.Environment),
		DimStyle.Render("API:"), ValueStyle.Render(ep.BaseURL))
	fmt.Fprintln(r.out, DimStyle.Render(chat.Tip))
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands."))
	fmt.Fprintln(r.out)
}

func (r *repl) printMessage(msg model.Message) {
	if msg.IsUser() {
		return
	}
	var body string
	if strings.HasPrefix(msg.Text, failure.Glyph) {
		body = util.Indent(ErrorStyle.Render(msg.Text), "  ")
	} else {
		body = styles.RenderMarkdown(r.renderer, msg.Text)
	}
	fmt.Fprintf(r.out, "%s\n%s\n\n", TitleStyle.Render(msg.Sender.DisplayName()), body)
}

// =============================================================================
// HISTORY
// =============================================================================

func (r *repl) loadHistory() {
	if r.historyFile == "" {
		return
	}
	f, err := os.Open(r.historyFile)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Debug().Err(err).Str("path", r.historyFile).Msg("open history")
		}
		return
	}
	defer f.Close()
	if _, err := r.reader.ReadHistory(f); err != nil {
		r.log.Debug().Err(err).Str("path", r.historyFile).Msg("read history")
	}
}

func (r *repl) saveHistory() {
	if r.historyFile == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := r.reader.WriteHistory(&buf); err != nil {
		r.log.Debug().Err(err).Msg("encode history")
		return
	}
	if err := util.AtomicWriteFile(r.historyFile, buf.Bytes(), 0600); err != nil {
		r.log.Debug().Err(err).Str("path", r.historyFile).Msg("save history")
	}
}
