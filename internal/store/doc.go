// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the durable, bounded conversation history.
//
// The store owns the ordered message sequence for the single active
// conversation and persists it synchronously as one JSON snapshot. The
// in-memory sequence is authoritative for the session: a failed disk write
// is logged and otherwise ignored.
package store
