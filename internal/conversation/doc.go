// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the observable conversation state.
//
// A Store owns the ordered message history and the busy flag. It is the only
// mutable resource shared between the orchestrator and the renderers. Its
// mutation surface is deliberately small:
//
//   - Append: add a message at the end
//   - Reset: replace the history with the greeting
//   - SetBusy: flip the busy flag
//
// Renderers register with Subscribe and are notified synchronously after each
// mutation. The history is never empty: it starts with the greeting and Reset
// puts the greeting back.
package conversation
