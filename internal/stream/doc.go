// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes a newline-delimited JSON response body into a lazy
// sequence of discrete events.
//
// Framing is byte-oriented: lines are split on '\n' before any text
// decoding, so a chunk boundary that lands inside a multi-byte rune or in
// the middle of a line never corrupts a record. A trailing partial line is
// buffered until the next chunk arrives, or parsed at end-of-data if the
// body ends without a final newline. One malformed line never invalidates
// its siblings and never aborts the stream.
package stream
