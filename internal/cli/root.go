// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/summify-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ExitError ends the process with Code. Err, when set, is printed first.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	env        string
	baseURL    string
	timeout    string
	logLevel   string
	plain      bool
}

func (o *rootOptions) overrides() config.Overrides {
	return config.Overrides{
		Environment: o.env,
		BaseURL:     o.baseURL,
		Timeout:     o.timeout,
		LogLevel:    o.logLevel,
	}
}

// loadConfig layers defaults, the config file, SUMMIFY_* variables and flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply lays the flags over cfg and revalidates.
func (o *rootOptions) apply(cfg *config.Config) error {
	cfg.ApplyOverrides(o.overrides())
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}
	if o.plain {
		cfg.UI.Plain = true
	}
	return nil
}

// NewRootCommand builds the summify command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "summify",
		Short: "Summarize YouTube videos from the terminal",
		Long: `summify sends YouTube links to a summarization backend and shows the
summary in a chat-style conversation.

Run without a subcommand to start an interactive chat.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.summify/config.toml)")
	pf.StringVar(&opts.env, "env", "", "environment: production or development")
	pf.StringVar(&opts.baseURL, "base-url", "", "backend base URL for the active environment")
	pf.StringVar(&opts.timeout, "timeout", "", "request deadline, e.g. 90s or 2m")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&opts.plain, "plain", false, "line mode output, no full-screen UI")

	root.AddCommand(
		newChatCommand(opts),
		newAskCommand(opts),
		newHealthCommand(opts),
		newConfigCommand(opts),
		newEventsCommand(opts),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	return exitCode(root, root.ExecuteContext(ctx))
}

func exitCode(root *cobra.Command, err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintln(root.ErrOrStderr(), ErrorStyle.Render("Error:"), exit.Err)
		}
		return exit.Code
	}
	fmt.Fprintln(root.ErrOrStderr(), ErrorStyle.Render("Error:"), err)
	return 1
}
