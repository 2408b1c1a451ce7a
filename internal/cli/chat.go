// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/ui/chat"
	"github.com/jeranaias/summify-tui/internal/ui/styles"
)

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start an interactive chat. Paste a YouTube link to get its summary.

On a terminal this opens the full-screen UI:
  enter   summarize          esc     cancel the request
  C-l     clear the chat     C-y     copy the last summary
  C-c     quit

With --plain, or when input or output is redirected, a line-mode prompt is
used instead. Type /help there for its commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if cfg.UI.Plain || !CanRunFullScreen() {
		return runLineChat(cmd, opts, cfg)
	}
	return runFullScreen(cmd, opts, cfg)
}

// runFullScreen runs the Bubble Tea UI until the user quits.
func runFullScreen(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	input := &chat.ProgramInput{}
	a, err := newApp(cfg, input)
	if err != nil {
		return err
	}
	defer a.Close()

	m := chat.New(chat.Options{
		Orchestrator: a.orch,
		Health:       a.client,
		Theme:        styles.NewTheme(cfg.UI.Theme),
		Logger:       a.log,
		Context:      ctx,
	})
	prog := chat.NewProgram(ctx, m, input, tea.WithMouseCellMotion())

	stopWatch := a.watchConfig(opts, func(ep config.Endpoint) {
		prog.Send(chat.EndpointChangedMsg{Endpoint: ep})
	})
	defer stopWatch()

	err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// runLineChat runs the line-mode chat on stdin and stdout.
func runLineChat(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	stopWatch := a.watchConfig(opts, nil)
	defer stopWatch()

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	// Outside the prompt Ctrl+C arrives as a signal; it cancels the
	// request in flight instead of killing the process.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		for range sigChan {
			if a.orch.Cancel() {
				a.log.Info().Msg("request cancelled from keyboard")
			}
		}
	}()

	r := newREPL(replConfig{
		orch:     a.orch,
		reader:   line,
		out:      cmd.OutOrStdout(),
		markdown: !cfg.UI.Plain && ColorsEnabled(),
		dark:     styles.ResolveDark(cfg.UI.Theme),
		copy:     clipboard.WriteAll,

		historyFile: historyPath(),
		log:         a.log,
	})
	defer r.Close()
	return r.Run(ctx)
}

// historyPath returns ~/.summify/chat_history, or "" when there is no home.
func historyPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chat_history")
}

// contextDone reports whether ctx has ended.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}
