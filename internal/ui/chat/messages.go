// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the skydesk TUI.
//
// This file defines the Bubble Tea message types used by the chat interface:
//   - Lifecycle: restore completion, boot and send exchange results
//   - Feedback: rating submission results
//   - Orders: order list refresh and creation results
//   - Animation: typewriter ticks (typewriter.go)
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"github.com/jeranaias/skydesk-tui/internal/api"
	"github.com/jeranaias/skydesk-tui/internal/model"
)

// =============================================================================
// LIFECYCLE MESSAGES
// =============================================================================

// RestoredMsg signals that startup session restore has finished.
type RestoredMsg struct{}

// BootResultMsg delivers the result of a boot exchange.
type BootResultMsg struct {
	SessionID string
	Resp      *api.ChatResponse
	Err       error
}

// SendResultMsg delivers the result of a user message exchange.
type SendResultMsg struct {
	SessionID string
	Resp      *api.ChatResponse
	Err       error
}

// =============================================================================
// FEEDBACK MESSAGES
// =============================================================================

// FeedbackResultMsg delivers the result of a feedback submission.
type FeedbackResultMsg struct {
	Err error
}

// =============================================================================
// ORDER MESSAGES
// =============================================================================

// OrdersRefreshedMsg signals that the order list has been reloaded.
type OrdersRefreshedMsg struct {
	Err error
}

// OrderCreatedMsg delivers a newly created order.
type OrderCreatedMsg struct {
	Order *model.Order
	Err   error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ConfigReloadedMsg signals that the configuration changed on disk.
type ConfigReloadedMsg struct{}

// LogoutMsg asks the root model to return to the login screen.
type LogoutMsg struct{}
