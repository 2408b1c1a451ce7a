// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/events"
	"github.com/jeranaias/summify-tui/internal/logging"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/util"
)

func newEventsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect conversation events",
	}
	cmd.AddCommand(newEventsTailCommand(opts))
	return cmd
}

func newEventsTailCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow conversation events published by running chats",
		Long: `Follow the conversation events other summify processes publish on the
Redis stream. Requires events.backend = "redis" (or SUMMIFY_REDIS_ADDR).
Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Events.Backend != events.BackendRedis {
				return errors.Errorf("events tail needs the %s backend, configured backend is %q",
					events.BackendRedis, cfg.Events.Backend)
			}

			log, closer, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			bridge, err := events.NewRedis(cfg.Events.RedisAddr, cfg.Events.Topic, log)
			if err != nil {
				return err
			}
			defer bridge.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			envs, err := bridge.Subscribe(ctx)
			if err != nil {
				return err
			}
			printTailHeader(cmd.ErrOrStderr(), bridge.Topic(), cfg.Events.RedisAddr)
			return tailEvents(cmd.OutOrStdout(), envs, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per event")
	return cmd
}

func printTailHeader(w io.Writer, topic, addr string) {
	fmt.Fprintf(w, "%s %s %s\n",
		DimStyle.Render("following"),
		ValueStyle.Render(topic),
		DimStyle.Render("on "+addr))
}

// tailEvents prints envelopes until the channel closes.
func tailEvents(w io.Writer, envs <-chan events.Envelope, asJSON bool) error {
	enc := json.NewEncoder(w)
	for env := range envs {
		if asJSON {
			if err := enc.Encode(env); err != nil {
				return errors.Wrap(err, "encode event")
			}
			continue
		}
		fmt.Fprintln(w, formatEnvelope(env))
	}
	return nil
}

// Column widths for tail output.
const (
	tailLabelWidth   = 9
	tailPreviewWidth = 100
)

// formatEnvelope renders one event as a single line. Only the first line of
// the message text is shown.
func formatEnvelope(env events.Envelope) string {
	ts := DimStyle.Render(env.At.Local().Format("15:04:05"))
	switch env.Type {
	case conversation.EventBusyChanged:
		state := "idle"
		if env.Busy {
			state = "busy"
		}
		return fmt.Sprintf("%s %s %s", ts, WarningStyle.Render("busy"), state)
	case conversation.EventReset:
		return fmt.Sprintf("%s %s history cleared", ts, WarningStyle.Render("reset"))
	default:
		msg := model.Message{Sender: env.Sender, Text: env.Text}
		preview := util.TruncateWidth(msg.Preview(0), tailPreviewWidth)
		label := util.PadRight(env.Sender.DisplayName()+":", tailLabelWidth)
		return fmt.Sprintf("%s %s %s (len %d)", ts, PromptStyle.Render(label), preview, env.Len)
	}
}
