// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the skydesk application:
// atomic file writes for the session snapshot, and string formatting used
// across the UI.
package util
