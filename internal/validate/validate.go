// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate checks user input before anything is sent to the backend.
package validate

import "regexp"

// youtubeURL matches an optional http(s) scheme, an optional www. prefix,
// a youtube.com or youtu.be host, then a slash and at least one character.
var youtubeURL = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)

// IsYouTubeURL reports whether candidate looks like a YouTube video URL.
// The caller is expected to trim surrounding whitespace first.
func IsYouTubeURL(candidate string) bool {
	if candidate == "" {
		return false
	}
	return youtubeURL.MatchString(candidate)
}
