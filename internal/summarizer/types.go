// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package summarizer

import (
	"encoding/json"
	"strings"
)

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	URL string `json:"url"`
}

// SummaryResponse is the body of a successful POST /summarize.
type SummaryResponse struct {
	Summary string `json:"summary"`

	// ProxiesStatus is backend diagnostics; opaque to the client.
	ProxiesStatus json.RawMessage `json:"proxies_status,omitempty"`

	// TranscriptLength is the transcript size in characters, when reported.
	TranscriptLength int `json:"transcript_length,omitempty"`
}

// HasSummary reports whether the response carries a non-blank summary.
func (r *SummaryResponse) HasSummary() bool {
	return r != nil && strings.TrimSpace(r.Summary) != ""
}

// ErrorResponse is the optional body of a non-2xx reply.
// Detail is usually a string; structured validation errors are kept as raw JSON.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// DetailText returns Detail as plain text.
func (e ErrorResponse) DetailText() string {
	if len(e.Detail) == 0 || string(e.Detail) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	return string(e.Detail)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the backend declared itself healthy.
func (h *HealthResponse) OK() bool {
	return h != nil && strings.EqualFold(h.Status, "ok")
}
