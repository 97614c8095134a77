// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the command-line surface: argument parsing and the
// plain-terminal chat REPL used when a full-screen TUI is unwanted or
// unavailable.
package cli
