// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the full-screen conversation view.
//
// The view is deliberately thin: it owns no protocol state. It appends the
// user's turn to the store, hands the exchange to the retry coordinator on a
// goroutine, and renders whatever events come back. A single busy flag
// serializes sends; Esc cancels the in-flight exchange.
package chat
