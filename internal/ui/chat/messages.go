// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Events delivered from the exchange goroutine to the Bubble Tea loop.
// Coordinator callbacks run off the UI goroutine, so they post onto the
// model's event channel and the listen command pumps them back in as
// messages.

// partialEvent carries the full accumulated assistant text so far.
type partialEvent struct {
	text  string
	model string
}

// statusEvent carries a transient notice: retry countdowns, credits used,
// redirect announcements, final failure.
type statusEvent struct {
	message string
}

// doneEvent marks the end of an exchange. ok mirrors the coordinator's
// result: true for completion or auth redirect, false after exhaustion.
type doneEvent struct {
	ok bool
}
