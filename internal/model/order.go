// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

// OrderStatusCanceled is the order status that blocks session creation and
// message sends for sessions bound to the order.
const OrderStatusCanceled = "canceled"

// Order is a backing flight order a session can be bound to.
type Order struct {
	ID                 string `json:"id"`
	ConfirmationNumber string `json:"confirmation_number"`
	FlightNumber       string `json:"flight_number"`
	SeatNumber         string `json:"seat_number"`
	MealSelection      string `json:"meal_selection,omitempty"`
	Status             string `json:"status,omitempty"`
}

// Canceled reports whether the order has been canceled.
func (o *Order) Canceled() bool {
	return o.Status == OrderStatusCanceled
}

// User is the signed-in user as returned by the login endpoint. Credentials
// in, opaque user object out; nothing else is assumed about authentication.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	AccountNumber string `json:"account_number,omitempty"`
}
