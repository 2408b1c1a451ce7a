// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for summify.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - EndpointConfig: Backend base URL and request timeout for one environment
//   - Endpoint: The resolved endpoint the orchestrator actually uses
//   - Watcher: Reloads the config file when it changes on disk
//
// # Environments
//
// Two environments are recognized, each with its own endpoint:
//
//	production   https://summify-backend-mue3.onrender.com   120s
//	development  http://localhost:8000                        60s
//
// The timeouts differ on purpose; both stay configurable, and the rest of the
// program only ever sees the single Endpoint selected by Environment.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (see Overrides)
//   - Environment variables (SUMMIFY_*)
//   - ~/.summify/config.toml
//   - ~/.summify/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ep := cfg.Endpoint()
//	fmt.Println(ep.BaseURL, ep.Timeout)
package config
