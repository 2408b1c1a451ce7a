// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package summarizer provides the HTTP client for the summarization backend.
//
// The backend exposes two endpoints:
//
//	POST {baseURL}/summarize   {"url": "..."} -> {"summary": "...", "proxies_status": ..., "transcript_length": N}
//	GET  {baseURL}/health      -> {"status": "ok", "message": "..."}
//
// Non-2xx replies may carry {"detail": "..."}; when they don't, the HTTP
// status text stands in for it.
//
// # Error Handling
//
// Every failure is a *ClientError. Use errors.As to inspect the Type:
//
//	resp, err := client.Summarize(ctx, url)
//	var cerr *summarizer.ClientError
//	if errors.As(err, &cerr) && cerr.Type == summarizer.ErrTypeHTTPStatus {
//	    fmt.Println(cerr.StatusCode, cerr.Detail)
//	}
//
// Summarize applies no timeout of its own: the caller's context carries the
// session deadline.
package summarizer
