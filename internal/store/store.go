// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/trustleast/webchat-tui/internal/model"
	"github.com/trustleast/webchat-tui/internal/util"
)

// DefaultWindowSize is the number of most-recent messages sent upstream as
// request context. This caps payload size and upstream token cost no matter
// how long the conversation grows.
const DefaultWindowSize = 20

// snapshotVersion identifies the on-disk snapshot format.
const snapshotVersion = 1

// snapshot is the persisted form of a conversation.
type snapshot struct {
	Version  int              `json:"version"`
	Messages []*model.Message `json:"messages"`
}

// Store holds the ordered message history for one conversation and keeps a
// JSON snapshot of it on disk. Safe for concurrent use: the UI reads the
// history while the exchange goroutine appends to it.
type Store struct {
	mu       sync.RWMutex
	path     string
	messages []*model.Message
}

// New creates a store backed by the snapshot file at path. Call Load to
// restore any previously persisted history.
func New(path string) *Store {
	return &Store{path: path}
}

// Load restores the conversation from the snapshot file. Absent or corrupt
// data yields an empty conversation rather than an error; the session must
// be able to start regardless of what is on disk.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("store: read %s: %v (starting empty)", s.path, err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("store: corrupt snapshot %s: %v (starting empty)", s.path, err)
		return
	}

	// Drop entries a hand-edited or damaged snapshot could contain.
	for _, msg := range snap.Messages {
		if msg == nil || !msg.Role.Valid() {
			continue
		}
		s.messages = append(s.messages, msg)
	}
}

// Append adds a message to the tail and persists synchronously.
// A persistence failure is logged and non-fatal.
func (s *Store) Append(msg *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.persist()
}

// RollbackLastIfRole removes the tail message iff its role matches.
// It is used to undo a speculative user message whose exchange failed after
// exhausting retries. Returns true if a message was removed.
func (s *Store) RollbackLastIfRole(role model.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return false
	}
	last := s.messages[len(s.messages)-1]
	if last.Role != role {
		return false
	}
	s.messages = s.messages[:len(s.messages)-1]
	s.persist()
	return true
}

// Window returns the most recent n messages, oldest first. n <= 0 selects
// DefaultWindowSize.
func (s *Store) Window(n int) []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		n = DefaultWindowSize
	}
	if len(s.messages) <= n {
		return append([]*model.Message(nil), s.messages...)
	}
	return append([]*model.Message(nil), s.messages[len(s.messages)-n:]...)
}

// Clear empties the conversation and the backing snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.persist()
}

// Save persists the current conversation unchanged. Persisting a freshly
// loaded snapshot reproduces the stored bytes exactly.
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
}

// Messages returns a copy of the full ordered history.
func (s *Store) Messages() []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Message(nil), s.messages...)
}

// Len returns the number of messages in the conversation.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the tail message, or nil if the conversation is empty.
func (s *Store) Last() *model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// persist writes the current snapshot to disk; the caller holds the lock.
// Marshalling is deterministic, so loading a snapshot and persisting it
// unchanged reproduces the stored bytes exactly.
func (s *Store) persist() {
	msgs := s.messages
	if msgs == nil {
		msgs = []*model.Message{}
	}

	data, err := json.MarshalIndent(snapshot{
		Version:  snapshotVersion,
		Messages: msgs,
	}, "", "  ")
	if err != nil {
		log.Printf("store: marshal snapshot: %v", err)
		return
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		log.Printf("store: persist %s: %v", s.path, err)
	}
}
