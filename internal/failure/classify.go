// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package failure

import (
	"fmt"
	"strings"
)

// Glyph prefixes every classified failure shown in the conversation.
const Glyph = "❌"

// User-facing texts.
const (
	MsgValidation          = "Please provide a valid YouTube URL (youtube.com or youtu.be)"
	MsgTimeout             = "Request timed out. The video might be too long or the server is busy. Please try again."
	MsgNetworkUnreachable  = "Couldn't connect to server. Please check if the backend is running at %s"
	MsgCaptionsUnavailable = "This video doesn't have English captions/subtitles available. Please try a different video."
	MsgInvalidURLFormat    = "The YouTube URL format is not recognized. Please check the URL and try again."
	MsgServerMisconfigured = "Server configuration error. Please contact support."
	MsgEmptySummary        = "No summary received from server"
	MsgUnknown             = "An unknown error occurred"
	MsgCancelled           = "Request cancelled."
)

// =============================================================================
// FAILURE
// =============================================================================

// Failure is a raw description of why a submission did not produce a summary.
type Failure struct {
	Reason Reason

	// HTTP failures
	StatusCode int
	StatusText string
	Detail     string

	// Description is the error text for non-HTTP failures.
	Description string
}

// Text returns the message text examined by the substring rules.
func (f Failure) Text() string {
	if f.Reason == ReasonHTTPStatus {
		if f.Detail != "" {
			return f.Detail
		}
		return f.StatusText
	}
	return f.Description
}

// Classification is the result of classifying a Failure.
type Classification struct {
	Kind    Kind
	Message string
}

// Render returns the text appended to the conversation.
func (c Classification) Render() string {
	return Glyph + " " + c.Message
}

// =============================================================================
// RULES
// =============================================================================

// Rule is one entry of the ordered classification table.
type Rule struct {
	Kind  Kind
	Match func(f Failure, text string) bool
	// Message builds the display text; baseURL is the configured backend.
	Message func(f Failure, text, baseURL string) string
}

var networkMarkers = []string{
	"failed to fetch",
	"networkerror",
	"connection refused",
	"no such host",
	"dial tcp",
	"network is unreachable",
	"connection reset",
	"i/o timeout",
}

// DefaultRules is evaluated top to bottom; the first match wins.
// Rules that only look at text apply to HTTP failures as well, so a backend
// detail about captions is reported as CaptionsUnavailable rather than as a
// generic rejection.
var DefaultRules = []Rule{
	{
		Kind:    KindTimeout,
		Match:   func(f Failure, _ string) bool { return f.Reason == ReasonDeadline },
		Message: constant(MsgTimeout),
	},
	{
		Kind: KindNetworkUnreachable,
		Match: func(f Failure, text string) bool {
			return f.Reason == ReasonTransport && containsAny(text, networkMarkers...)
		},
		Message: func(_ Failure, _, baseURL string) string {
			return fmt.Sprintf(MsgNetworkUnreachable, baseURL)
		},
	},
	{
		Kind:    KindCaptionsUnavailable,
		Match:   textContains("captions", "transcript"),
		Message: constant(MsgCaptionsUnavailable),
	},
	{
		Kind:    KindInvalidURLFormat,
		Match:   textContains("invalid youtube url", "invalid url"),
		Message: constant(MsgInvalidURLFormat),
	},
	{
		Kind:    KindServerMisconfigured,
		Match:   textContains("api key"),
		Message: constant(MsgServerMisconfigured),
	},
	{
		Kind:    KindEmptySummary,
		Match:   func(f Failure, _ string) bool { return f.Reason == ReasonEmptySummary },
		Message: constant(MsgEmptySummary),
	},
	{
		Kind:    KindServerRejected,
		Match:   func(f Failure, _ string) bool { return f.Reason == ReasonHTTPStatus },
		Message: passthrough,
	},
}

// Classify maps f onto the taxonomy using DefaultRules.
func Classify(f Failure, baseURL string) Classification {
	return ClassifyWith(DefaultRules, f, baseURL)
}

// ClassifyWith maps f onto the taxonomy using rules. Anything no rule claims
// is KindUnknown with the raw failure text.
func ClassifyWith(rules []Rule, f Failure, baseURL string) Classification {
	text := f.Text()
	for _, r := range rules {
		if r.Match != nil && r.Match(f, text) {
			return Classification{Kind: r.Kind, Message: r.Message(f, text, baseURL)}
		}
	}
	return Classification{Kind: KindUnknown, Message: passthrough(f, text, baseURL)}
}

// Validation returns the classification used for rejected input. It is never
// produced by Classify: validation happens before a Failure can exist.
func Validation() Classification {
	return Classification{Kind: KindValidationRejected, Message: MsgValidation}
}

// Cancelled returns the classification for a submission the user aborted.
func Cancelled() Classification {
	return Classification{Kind: KindUnknown, Message: MsgCancelled}
}

func constant(msg string) func(Failure, string, string) string {
	return func(Failure, string, string) string { return msg }
}

func passthrough(_ Failure, text, _ string) string {
	if strings.TrimSpace(text) == "" {
		return MsgUnknown
	}
	return text
}

func textContains(needles ...string) func(Failure, string) bool {
	return func(_ Failure, text string) bool {
		return containsAny(text, needles...)
	}
}

func containsAny(text string, needles ...string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
