// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator runs the submission pipeline: validate the input,
// dispatch at most one summarization request at a time under a hard deadline,
// classify whatever comes back, and record the turn in the conversation store.
//
// # Lifecycle
//
// Submit is the only entry point that mutates the conversation. For every
// accepted submission it:
//
//  1. appends the user's URL and raises the store's busy flag
//  2. starts the request as a task with its own cancellable context
//  3. races the task against the deadline timer and the caller's context
//  4. appends exactly one bot message, the summary or a classified failure
//  5. lowers the busy flag and clears the input buffer, exactly once
//
// Whatever loses the race is discarded. A request cancelled by the deadline
// carries ErrDeadlineElapsed as its cause; one cancelled through Cancel
// carries ErrUserCancelled.
//
// # Usage
//
//	orch, err := orchestrator.New(store, client,
//	    orchestrator.WithEndpoint(cfg.Endpoint()),
//	    orchestrator.WithLogger(log),
//	)
//	out := orch.Submit(ctx, input)
//	if out.Status == orchestrator.StatusFailed {
//	    fmt.Println(out.Kind, out.Message)
//	}
package orchestrator
