// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the skydesk application.
package util

import (
	"strconv"
	"strings"
)

// TruncateRunes truncates a string to max runes, appending "..." when cut.
// Rune-based so multi-byte characters are never split mid-sequence.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CollapseWhitespace replaces newlines and carriage returns with spaces.
// Used for one-line previews of message content in the session tabs.
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// FormatScore formats a half-star rating for display: whole numbers without
// a decimal point ("4"), half steps with one ("4.5").
func FormatScore(score float64) string {
	if score == float64(int(score)) {
		return strconv.Itoa(int(score))
	}
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// IntToString converts an int to string.
func IntToString(i int) string {
	return strconv.Itoa(i)
}
