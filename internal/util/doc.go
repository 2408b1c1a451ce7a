// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the summify packages.
//
//   - AtomicWriteFile: crash-safe file writing with fsync, used for config init
//   - TruncateWidth / PadRight: display-width aware string fitting for the
//     status bar and the REPL
//
// Usage:
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	footer := util.TruncateWidth(baseURL, 40)
package util
