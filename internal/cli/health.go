// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/summarizer"
)

// healthResult is the outcome of probing one endpoint.
type healthResult struct {
	Endpoint config.Endpoint
	Response *summarizer.HealthResponse
	Err      error
}

// OK reports whether the backend answered and declared itself healthy.
func (r healthResult) OK() bool {
	return r.Err == nil && r.Response.OK()
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the summarization backend",
		Long: `Call GET /health on the active endpoint, or on every configured
environment with --all. Exits 1 if any backend is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			endpoints := []config.Endpoint{cfg.Endpoint()}
			if all {
				endpoints = allEndpoints(cfg)
			}

			results := checkHealth(cmd.Context(), endpoints)
			healthy := printHealth(cmd.OutOrStdout(), results)
			if !healthy {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "check every configured environment")
	return cmd
}

// allEndpoints resolves the endpoint of each environment.
func allEndpoints(cfg *config.Config) []config.Endpoint {
	envs := []string{config.EnvProduction, config.EnvDevelopment}
	out := make([]config.Endpoint, 0, len(envs))
	for _, env := range envs {
		c := cfg.Clone()
		c.Environment = env
		out = append(out, c.Endpoint())
	}
	return out
}

// checkHealth probes the endpoints concurrently. Results keep input order.
func checkHealth(ctx context.Context, endpoints []config.Endpoint) []healthResult {
	results := make([]healthResult, len(endpoints))
	g, ctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			client := summarizer.NewClient(&summarizer.ClientConfig{
				BaseURL:   ep.BaseURL,
				UserAgent: "summify/" + Version,
			})
			resp, err := client.Health(ctx)
			results[i] = healthResult{Endpoint: ep, Response: resp, Err: err}
			// A failed probe must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// printHealth writes one line per result and reports whether all passed.
func printHealth(w io.Writer, results []healthResult) bool {
	healthy := true
	for _, r := range results {
		var detail string
		switch {
		case r.Err != nil:
			detail = ErrorStyle.Render("unreachable") + " " + DimStyle.Render(r.Err.Error())
		case r.Response == nil:
			detail = WarningStyle.Render("empty response")
		case r.OK():
			detail = SuccessStyle.Render(r.Response.Status)
			if r.Response.Message != "" {
				detail += " " + DimStyle.Render(r.Response.Message)
			}
		default:
			detail = WarningStyle.Render(fmt.Sprintf("unhealthy (status %q)", r.Response.Status))
		}
		healthy = healthy && r.OK()
		fmt.Fprintf(w, "%s %s%s %s\n",
			RenderStatus(r.OK()),
			LabelStyle.Render(r.Endpoint.Environment),
			ValueStyle.Render(r.Endpoint.BaseURL),
			detail)
	}
	return healthy
}
