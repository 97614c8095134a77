// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustleast/webchat-tui/internal/model"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "history.json"))
}

func TestAppendAndReload(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewUserMessage("hello"))
	s.Append(model.NewMessage(model.RoleAssistant, "hi there"))

	reloaded := New(s.Path())
	reloaded.Load()

	require.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "hello", reloaded.Messages()[0].Content)
	assert.Equal(t, model.RoleAssistant, reloaded.Messages()[1].Role)
}

func TestWindowBounds(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < 30; i++ {
		s.Append(model.NewUserMessage(fmt.Sprintf("message %d", i)))
	}

	window := s.Window(DefaultWindowSize)
	require.Len(t, window, DefaultWindowSize)
	// Exactly the most recent N, oldest first.
	assert.Equal(t, "message 10", window[0].Content)
	assert.Equal(t, "message 29", window[len(window)-1].Content)
}

func TestWindowShorterThanN(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewUserMessage("one"))
	s.Append(model.NewUserMessage("two"))

	window := s.Window(20)
	require.Len(t, window, 2)
	assert.Equal(t, "one", window[0].Content)
	assert.Equal(t, "two", window[1].Content)
}

func TestWindowDefaultSize(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < 25; i++ {
		s.Append(model.NewUserMessage("m"))
	}
	assert.Len(t, s.Window(0), DefaultWindowSize)
	assert.Len(t, s.Window(-1), DefaultWindowSize)
}

func TestWindowIsACopy(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewUserMessage("a"))
	s.Append(model.NewUserMessage("b"))

	window := s.Window(10)
	window[0] = nil
	assert.NotNil(t, s.Messages()[0])
}

func TestRollbackLastIfRole(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewMessage(model.RoleAssistant, "answer"))
	s.Append(model.NewUserMessage("question"))

	require.True(t, s.RollbackLastIfRole(model.RoleUser))
	require.Equal(t, 1, s.Len())
	assert.Equal(t, model.RoleAssistant, s.Last().Role)

	// Tail is now an assistant message, so a user rollback is a no-op.
	assert.False(t, s.RollbackLastIfRole(model.RoleUser))
	assert.Equal(t, 1, s.Len())
}

func TestRollbackEmptyStore(t *testing.T) {
	s := tempStore(t)
	assert.False(t, s.RollbackLastIfRole(model.RoleUser))
}

func TestRollbackPersisted(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewUserMessage("doomed"))
	s.RollbackLastIfRole(model.RoleUser)

	reloaded := New(s.Path())
	reloaded.Load()
	assert.Equal(t, 0, reloaded.Len())
}

func TestClear(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewUserMessage("a"))
	s.Clear()

	assert.Equal(t, 0, s.Len())

	reloaded := New(s.Path())
	reloaded.Load()
	assert.Equal(t, 0, reloaded.Len())
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist.json"))
	s.Load()
	assert.Equal(t, 0, s.Len())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := New(path)
	s.Load()
	assert.Equal(t, 0, s.Len(), "corrupt snapshot yields an empty conversation")
}

func TestLoadDropsInvalidRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	snap := `{"version":1,"messages":[
		{"id":"msg_1","role":"user","content":"ok","timestamp":"2025-01-02T03:04:05Z"},
		{"id":"msg_2","role":"martian","content":"bad","timestamp":"2025-01-02T03:04:06Z"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(snap), 0600))

	s := New(path)
	s.Load()
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "ok", s.Messages()[0].Content)
}

func TestRoundTripByteIdentical(t *testing.T) {
	s := tempStore(t)
	s.Append(model.NewUserMessage("héllo wörld"))
	msg := model.NewMessage(model.RoleAssistant, "réponse")
	msg.Model = "cheapest"
	s.Append(msg)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	reloaded := New(s.Path())
	reloaded.Load()
	reloaded.Save()

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "load then save unchanged must reproduce stored bytes")
}

func TestPersistFailureNonFatal(t *testing.T) {
	// Point the snapshot inside a path that cannot be a directory.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s := New(filepath.Join(blocker, "history.json"))
	s.Append(model.NewUserMessage("still here"))

	// In-memory state stays authoritative for the session.
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "still here", s.Messages()[0].Content)
}
