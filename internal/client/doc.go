// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client drives exchanges with the remote chat-completion service.
//
// Client owns a single request/response exchange and classifies its outcome
// as Completed, AuthRedirect or Failed. Coordinator wraps Client with
// bounded exponential-backoff retry and rolls back the speculative user
// message when an exchange ultimately fails.
package client
