// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side data structures mirrored from the
// support backend: sessions, messages, the operational event trace, agent
// descriptors, guardrail results, orders and users.
//
// All mutation of session lifecycle fields goes through the session
// controller; this package only defines shapes, constructors and read
// helpers.
package model
