// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/trustleast/webchat-tui/internal/model"
	"github.com/trustleast/webchat-tui/internal/stream"
)

// Configuration constants for the chat service.
const (
	// DefaultModel is the model identifier sent with every request.
	DefaultModel = "cheapest"

	// maxErrorBody caps how much of an error response body is kept for
	// diagnostics.
	maxErrorBody = 8 * 1024
)

// ErrNetwork indicates the request could not be sent or the response body
// could not be read.
var ErrNetwork = errors.New("network failure")

// ServiceError represents a non-2xx response without a redirect signal.
type ServiceError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("service error (HTTP %d)", e.Status)
}

// =============================================================================
// OUTCOME TYPES
// =============================================================================

// Outcome is the terminal result of one exchange. It is a closed set:
// Completed, AuthRedirect or Failed. Control flow branches on the variant,
// never on error type inspection.
type Outcome interface {
	outcome()
}

// Completed means the stream ended normally. Msg is the finalized assistant
// message; empty content is valid, not an error.
type Completed struct {
	Msg *model.Message
}

// AuthRedirect means the service demanded re-authentication. The caller
// navigates to Target; the pending user message is preserved so the
// conversation can resume after authentication.
type AuthRedirect struct {
	Target string
}

// Failed means a non-success response without a redirect signal, a
// network-level failure, or an unexpected stream termination.
type Failed struct {
	Reason error
}

func (Completed) outcome()    {}
func (AuthRedirect) outcome() {}
func (Failed) outcome()       {}

// =============================================================================
// CALLBACKS
// =============================================================================

// Callbacks are the rendering/status hooks the core invokes while an
// exchange is in flight. Nil fields are skipped.
type Callbacks struct {
	// RenderPartial receives the full accumulated text so far and the most
	// recently seen model identifier, once per content delta.
	RenderPartial func(text, model string)

	// ReportStatus receives transient notices: credits used, retry
	// countdowns, final failure.
	ReportStatus func(message string)
}

func (cb Callbacks) renderPartial(text, model string) {
	if cb.RenderPartial != nil {
		cb.RenderPartial(text, model)
	}
}

func (cb Callbacks) reportStatus(message string) {
	if cb.ReportStatus != nil {
		cb.ReportStatus(message)
	}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireMessage is the request form of a history entry: role and content
// only, no IDs or timestamps.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// wireRequest is the request body for the streaming endpoint.
type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client performs one streaming exchange per Run call.
type Client struct {
	endpoint     string
	model        string
	redirectPath string
	httpClient   *http.Client
}

// New creates a client for the given streaming chat-completion endpoint.
//
// The HTTP client never follows redirects: a Location-bearing response is
// the service's re-authentication signal and must surface as an
// AuthRedirect outcome, not be transparently chased. No client timeout is
// set; streaming reads are bounded by the caller's context.
func New(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    DefaultModel,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// WithModel sets the model identifier sent with requests.
func (c *Client) WithModel(m string) *Client {
	if m != "" {
		c.model = m
	}
	return c
}

// WithRedirectPath sets the client-origin path sent in the redirect-path
// header, so the auth flow can send the user back here afterwards.
func (c *Client) WithRedirectPath(p string) *Client {
	c.redirectPath = p
	return c
}

// WithHTTPClient swaps the underlying HTTP client (tests).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Run performs one exchange: build the request from the bounded history
// window, send it, and consume the streamed body. credential may be empty;
// when present it is sent as the Authorization header.
func (c *Client) Run(ctx context.Context, window []*model.Message, credential string, cb Callbacks) Outcome {
	body, err := json.Marshal(buildRequest(c.model, window))
	if err != nil {
		return Failed{Reason: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Failed{Reason: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.redirectPath != "" {
		req.Header.Set("X-Redirect-Path", c.redirectPath)
	}
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failed{Reason: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The redirect signal is checked before anything is treated as a
		// failure: re-authentication is a control signal, not an error.
		if target := resp.Header.Get("Location"); target != "" {
			return AuthRedirect{Target: target}
		}
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Printf("client: HTTP %d from %s", resp.StatusCode, c.endpoint)
		return Failed{Reason: &ServiceError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(diag)),
		}}
	}

	return c.consume(ctx, resp.Body, cb)
}

// consume drives the stream decoder until end-of-data, accumulating deltas
// into an in-flight assistant message and fanning events out to the
// callbacks. The message is the exchange's only mutable state; it is sealed
// on clean termination and discarded on failure.
func (c *Client) consume(ctx context.Context, body io.Reader, cb Callbacks) Outcome {
	msg := model.NewAssistantMessage()
	var lastModel string

	dec := stream.NewDecoder(body)
	for {
		select {
		case <-ctx.Done():
			return Failed{Reason: ctx.Err()}
		default:
		}

		ev, err := dec.Next()
		if err != nil {
			if err == io.EOF {
				// Normal termination, even if no content ever arrived.
				msg.FinalizeStream(lastModel)
				return Completed{Msg: msg}
			}
			// A broken body is a network failure, never a completion: the
			// partial text must not reach durable history.
			return Failed{Reason: fmt.Errorf("%w: read stream: %v", ErrNetwork, err)}
		}

		switch e := ev.(type) {
		case stream.ContentDelta:
			if e.Model != "" {
				lastModel = e.Model
			}
			msg.AppendDelta(e.Text)
			cb.renderPartial(msg.DisplayContent(), lastModel)
		case stream.UsageFinal:
			cb.reportStatus(fmt.Sprintf("Credits used: %g", e.Credits))
		case stream.Malformed:
			log.Printf("client: skipping malformed stream record: %q", truncateRaw(e.Raw))
		}
	}
}

// buildRequest projects the history window onto the wire format.
func buildRequest(modelID string, window []*model.Message) wireRequest {
	msgs := make([]wireMessage, 0, len(window))
	for _, m := range window {
		msgs = append(msgs, wireMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}
	return wireRequest{Model: modelID, Messages: msgs}
}

func truncateRaw(raw []byte) string {
	const max = 120
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
