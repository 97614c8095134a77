// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the opaque service credential and reacts to
// re-authentication demands.
//
// Token acquisition itself happens outside this process: an external flow
// writes the bearer token to a well-known file. The holder loads that file
// and can watch it, so a token that appears after a redirect is picked up
// by the next attempt without restarting.
package auth
