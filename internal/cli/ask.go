// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/summify-tui/internal/orchestrator"
	"github.com/jeranaias/summify-tui/internal/ui/styles"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <youtube-url>",
		Short: "Summarize one video and print the summary",
		Long: `Summarize one video and print the summary to stdout.

The exit status is 0 when a summary was printed and 1 when the request
failed; the failure notice is printed either way.`,
		Example: `  summify ask https://youtu.be/dQw4w9WgXcQ
  summify ask --env production "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, args[0])
		},
	}
}

func runAsk(cmd *cobra.Command, opts *rootOptions, url string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.orch.Submit(ctx, url)
	if out.Status == orchestrator.StatusIgnored {
		return errors.New("nothing to summarize: the URL is empty")
	}

	last, _ := a.store.Last()
	markdown := !cfg.UI.Plain && ColorsEnabled()
	displayResponse(cmd.OutOrStdout(), last.Text, markdown, styles.ResolveDark(cfg.UI.Theme))

	if !out.OK() {
		return &ExitError{Code: 1}
	}
	return nil
}

// displayResponse prints text, through glamour when markdown is set.
func displayResponse(w io.Writer, text string, markdown, dark bool) {
	if markdown {
		if r, err := styles.NewMarkdownRenderer(GetTerminalWidth()-4, dark); err == nil {
			text = styles.RenderMarkdown(r, text)
		}
	}
	fmt.Fprintln(w, text)
}
