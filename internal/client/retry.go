// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/trustleast/webchat-tui/internal/model"
	"github.com/trustleast/webchat-tui/internal/store"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1000 * time.Millisecond
)

// CredentialSource supplies the current bearer token, or "" when none is
// held. It is consulted fresh on every attempt so a token acquired between
// attempts is picked up automatically.
type CredentialSource interface {
	Credential() string
}

// Coordinator wraps Client with bounded exponential-backoff retry and
// rollback of speculative state on final failure.
type Coordinator struct {
	store       *store.Store
	client      *Client
	creds       CredentialSource
	navigate    func(target string)
	callbacks   Callbacks
	windowSize  int
	maxAttempts int
	baseDelay   time.Duration

	// wait is the backoff sleeper, replaceable in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewCoordinator creates a coordinator over the given store and client.
// navigate is invoked with the redirect target on an AuthRedirect outcome;
// it may be nil.
func NewCoordinator(st *store.Store, cl *Client, creds CredentialSource, navigate func(string), cb Callbacks) *Coordinator {
	return &Coordinator{
		store:       st,
		client:      cl,
		creds:       creds,
		navigate:    navigate,
		callbacks:   cb,
		windowSize:  store.DefaultWindowSize,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		wait:        waitContext,
	}
}

// WithCallbacks replaces the rendering/status hooks. Each frontend installs
// its own before the first Send.
func (co *Coordinator) WithCallbacks(cb Callbacks) *Coordinator {
	co.callbacks = cb
	return co
}

// WithWindowSize sets how many trailing messages are sent per request.
func (co *Coordinator) WithWindowSize(n int) *Coordinator {
	if n > 0 {
		co.windowSize = n
	}
	return co
}

// WithMaxAttempts sets the attempt ceiling.
func (co *Coordinator) WithMaxAttempts(n int) *Coordinator {
	if n > 0 {
		co.maxAttempts = n
	}
	return co
}

// WithBaseDelay sets the base backoff delay.
func (co *Coordinator) WithBaseDelay(d time.Duration) *Coordinator {
	if d > 0 {
		co.baseDelay = d
	}
	return co
}

// Send runs one user turn to a terminal result, retrying transient
// failures. It returns true when the turn reached a resolution that keeps
// the conversation consistent (completion or auth redirect) and false when
// all attempts failed and the speculative user message was rolled back.
//
// The caller has already appended the user message to the store; every
// attempt rebuilds its request context from the store and the credential
// source so nothing stale is reused.
func (co *Coordinator) Send(ctx context.Context) bool {
	var lastErr error

	for attempt := 1; attempt <= co.maxAttempts; attempt++ {
		if attempt > 1 {
			// baseDelay * 2^(failedAttempt-1): 1s, 2s, 4s, ...
			delay := co.baseDelay << (attempt - 2)
			co.callbacks.reportStatus(fmt.Sprintf("Request failed, retrying in %s (attempt %d of %d)...",
				delay, attempt, co.maxAttempts))
			if err := co.wait(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		credential := ""
		if co.creds != nil {
			credential = co.creds.Credential()
		}
		window := co.store.Window(co.windowSize)

		switch o := co.client.Run(ctx, window, credential, co.callbacks).(type) {
		case Completed:
			co.store.Append(o.Msg)
			return true

		case AuthRedirect:
			// Not a failure: keep the pending user message so the turn can
			// be resent once authentication completes.
			co.callbacks.reportStatus("Authentication required, redirecting...")
			if co.navigate != nil {
				co.navigate(o.Target)
			}
			return true

		case Failed:
			lastErr = o.Reason
			log.Printf("client: attempt %d/%d failed: %v", attempt, co.maxAttempts, o.Reason)
			if ctx.Err() != nil {
				// Cancelled mid-exchange; skip the remaining attempts.
				attempt = co.maxAttempts
			}
		}
	}

	// Exhausted: the conversation must not retain an unanswered,
	// unrecoverable turn.
	co.store.RollbackLastIfRole(model.RoleUser)
	co.callbacks.reportStatus(fmt.Sprintf("Message failed after %d attempts: %v", co.maxAttempts, lastErr))
	return false
}

// waitContext sleeps for d or until the context is cancelled.
func waitContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
