// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderEmptyWhenFileAbsent(t *testing.T) {
	h := NewHolder(filepath.Join(t.TempDir(), "credential"))
	assert.Empty(t, h.Credential())
}

func TestHolderLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential")
	require.NoError(t, os.WriteFile(path, []byte("Bearer tok-abc\n"), 0600))

	h := NewHolder(path)
	assert.Equal(t, "Bearer tok-abc", h.Credential(), "token is trimmed")
}

func TestHolderSet(t *testing.T) {
	h := &Holder{}
	h.Set("  Bearer tok  ")
	assert.Equal(t, "Bearer tok", h.Credential())
}

func TestWatchPicksUpNewCredential(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credential")

	h := NewHolder(path)
	require.Empty(t, h.Credential())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Watch(ctx)

	// Simulate the external auth flow writing the token after a redirect.
	require.NoError(t, os.WriteFile(path, []byte("Bearer late-token"), 0600))

	require.Eventually(t, func() bool {
		return h.Credential() == "Bearer late-token"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatchPicksUpAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credential")

	h := NewHolder(path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Watch(ctx)

	tmp := filepath.Join(dir, ".credential.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("Bearer renamed"), 0600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return h.Credential() == "Bearer renamed"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatchWithoutPathIsNoop(t *testing.T) {
	h := &Holder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Watch(ctx) // must not panic or spin
	assert.Empty(t, h.Credential())
}
