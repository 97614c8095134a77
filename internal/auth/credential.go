// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Holder stores the current bearer token. The zero value holds no
// credential. Safe for concurrent use: the watcher goroutine updates it
// while exchange attempts read it.
type Holder struct {
	mu    sync.RWMutex
	token string
	path  string
}

// NewHolder creates a holder backed by the credential file at path and
// loads whatever is there now. An absent file simply means no credential
// yet.
func NewHolder(path string) *Holder {
	h := &Holder{path: path}
	h.reload()
	return h
}

// Credential returns the current token, or "" when none is held.
func (h *Holder) Credential() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Set replaces the current token.
func (h *Holder) Set(token string) {
	h.mu.Lock()
	h.token = strings.TrimSpace(token)
	h.mu.Unlock()
}

// reload reads the token from the credential file.
func (h *Holder) reload() {
	if h.path == "" {
		return
	}
	data, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("auth: read credential file: %v", err)
		}
		return
	}
	h.Set(string(data))
}

// Watch reloads the token whenever the credential file changes, until the
// context is cancelled. The parent directory is watched rather than the
// file itself so creation and atomic-rename writes are both seen.
//
// Watch failures are non-fatal: without a watcher the credential is still
// re-read from memory on every attempt, it just will not refresh from disk.
func (h *Holder) Watch(ctx context.Context) {
	if h.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("auth: credential watcher unavailable: %v", err)
		return
	}

	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Printf("auth: create credential dir: %v", err)
	}
	if err := watcher.Add(dir); err != nil {
		log.Printf("auth: watch %s: %v", dir, err)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(h.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					h.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("auth: watcher error: %v", err)
			}
		}
	}()
}
