// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
)

// =============================================================================
// ORDER PICKER
// =============================================================================

// OrderPicker lists the user's flight orders so a session can be started
// against one. Canceled orders stay visible but cannot be picked.
type OrderPicker struct {
	theme  *styles.Theme
	orders []model.Order
	cursor int
}

// NewOrderPicker creates a picker over the cached order list.
func NewOrderPicker(theme *styles.Theme, orders []model.Order) *OrderPicker {
	return &OrderPicker{theme: theme, orders: orders}
}

// SetOrders replaces the listed orders, keeping the cursor in range.
func (op *OrderPicker) SetOrders(orders []model.Order) {
	op.orders = orders
	if op.cursor >= len(orders) {
		op.cursor = len(orders) - 1
	}
	if op.cursor < 0 {
		op.cursor = 0
	}
}

// MoveUp moves the cursor up.
func (op *OrderPicker) MoveUp() {
	if op.cursor > 0 {
		op.cursor--
	}
}

// MoveDown moves the cursor down.
func (op *OrderPicker) MoveDown() {
	if op.cursor < len(op.orders)-1 {
		op.cursor++
	}
}

// Pick returns the order under the cursor and true, or a zero order and
// false when the list is empty or the order is canceled.
func (op *OrderPicker) Pick() (model.Order, bool) {
	if len(op.orders) == 0 {
		return model.Order{}, false
	}
	order := op.orders[op.cursor]
	if order.Canceled() {
		return model.Order{}, false
	}
	return order, true
}

// View renders the picker.
func (op *OrderPicker) View() string {
	var sb strings.Builder
	sb.WriteString(op.theme.PanelTitle.Render("Your flight orders"))
	sb.WriteString("\n\n")

	if len(op.orders) == 0 {
		sb.WriteString(op.theme.PanelLabel.Render("No orders on file. Press n to create one."))
	}

	for i, order := range op.orders {
		line := order.ConfirmationNumber + "  " + order.FlightNumber + "  seat " + order.SeatNumber
		switch {
		case order.Canceled():
			line += "  (canceled)"
			sb.WriteString(op.theme.ErrorText.Render("  " + line))
		case i == op.cursor:
			sb.WriteString(op.theme.TabActive.Render("> " + line))
		default:
			sb.WriteString(op.theme.PanelValue.Render("  " + line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(op.theme.SeatMapLegend.Render("enter starts a session, n creates an order, esc closes"))
	return sb.String()
}
