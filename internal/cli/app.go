// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/events"
	"github.com/jeranaias/summify-tui/internal/logging"
	"github.com/jeranaias/summify-tui/internal/orchestrator"
	"github.com/jeranaias/summify-tui/internal/summarizer"
)

// app is the wiring shared by the chat and ask commands.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *conversation.Store
	client *summarizer.Client
	orch   *orchestrator.Orchestrator
	bridge *events.Bridge

	closers []io.Closer
}

// newApp builds the logger, client, store and orchestrator for cfg.
// input may be nil when nothing needs clearing after a submission.
func newApp(cfg *config.Config, input orchestrator.InputBuffer) (*app, error) {
	log, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	ep := cfg.Endpoint()
	a.client = summarizer.NewClient(&summarizer.ClientConfig{
		BaseURL:   ep.BaseURL,
		UserAgent: "summify/" + Version,
	})
	a.store = conversation.New()

	a.orch, err = orchestrator.New(a.store, a.client,
		orchestrator.WithEndpoint(ep),
		orchestrator.WithLogger(log),
		orchestrator.WithInputBuffer(input),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Events.Enabled {
		bridge, err := events.New(cfg.Events, log)
		if err != nil {
			// Events are an optional side channel; chat works without them.
			log.Warn().Err(err).Str("backend", cfg.Events.Backend).Msg("event bridge disabled")
		} else {
			var first io.Closer = bridge
			if journal, err := startJournal(bridge, log); err != nil {
				log.Warn().Err(err).Msg("event journal disabled")
			} else {
				first = journal
			}
			bridge.Attach(a.store)
			a.bridge = bridge
			a.closers = append([]io.Closer{first}, a.closers...)
		}
	}

	log.Info().
		Str("version", Version).
		Str("env", ep.Environment).
		Str("base_url", ep.BaseURL).
		Dur("timeout", ep.Timeout).
		Bool("events", a.bridge != nil).
		Msg("summify started")
	return a, nil
}

// applyEndpoint points the client and the orchestrator at ep.
func (a *app) applyEndpoint(ep config.Endpoint) {
	a.client.SetBaseURL(ep.BaseURL)
	a.orch.SetEndpoint(ep)
}

// watchConfig reloads the config file on change and applies a changed
// endpoint. Flags keep precedence over the file. onChange, when set, is
// called after the endpoint moved. The returned stop func is never nil.
func (a *app) watchConfig(opts *rootOptions, onChange func(config.Endpoint)) (stop func()) {
	path, err := config.ResolvePath(opts.configPath)
	if err != nil {
		a.log.Debug().Err(err).Msg("config watch disabled")
		return func() {}
	}

	w, err := config.Watch(path, func(cfg *config.Config, err error) {
		if err != nil {
			a.log.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous settings")
			return
		}
		if err := opts.apply(cfg); err != nil {
			a.log.Warn().Err(err).Msg("reloaded config rejected")
			return
		}
		ep := cfg.Endpoint()
		if ep == a.orch.Endpoint() {
			return
		}
		a.applyEndpoint(ep)
		if onChange != nil {
			onChange(ep)
		}
	})
	if err != nil {
		a.log.Debug().Err(err).Str("path", path).Msg("config watch disabled")
		return func() {}
	}
	return func() {
		if err := w.Close(); err != nil {
			a.log.Debug().Err(err).Msg("close config watcher")
		}
	}
}

// Close releases the journal, the bridge and the log file, in that order.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Debug().Err(err).Msg("close")
		}
	}
	a.closers = nil
}
