// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the summify command line.
//
// # Commands
//
//	summify                 Interactive chat (same as "summify chat")
//	summify chat            Full-screen UI on a terminal, line mode otherwise
//	summify ask <url>       Summarize one video and print the result
//	summify health          Check the backend health endpoint
//	summify config show     Print the resolved configuration
//	summify config path     Print the configuration file path
//	summify config init     Write a default configuration file
//	summify events tail     Follow conversation events on the Redis stream
//
// # Global flags
//
//	-c, --config PATH   Configuration file (default ~/.summify/config.toml)
//	--env NAME          production or development
//	--base-url URL      Override the backend base URL
//	--timeout DUR       Override the request deadline, e.g. 90s
//	--log-level LEVEL   debug, info, warn or error
//	--plain             Line mode output, no full-screen UI
//
// Settings are layered: defaults, then the config file, then SUMMIFY_*
// environment variables, then flags.
package cli
