// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package failure turns raw submission failures into user-facing messages.
//
// Every failure a submission can end in is described by a Failure value and
// mapped by Classify onto one Kind plus display text. Classify is pure and
// deterministic: the same Failure always yields the same Classification.
//
// Most of the mapping is substring matching on text produced by the backend.
// That coupling is kept in a single ordered rule table (DefaultRules) so it can
// be swapped for structured error codes without touching the callers.
//
// # Usage
//
//	c := failure.Classify(failure.Failure{
//	    Reason: failure.ReasonHTTPStatus,
//	    Detail: "No English captions/transcript found for this video.",
//	}, baseURL)
//	store.Append(model.BotMessage(c.Render()))
package failure
