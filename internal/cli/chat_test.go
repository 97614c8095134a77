// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamPrinterPrintsOnlyNewSuffix(t *testing.T) {
	var buf bytes.Buffer
	p := &streamPrinter{w: &buf}

	p.partial("Hel")
	p.partial("Hello")
	assert.Equal(t, "Hello", buf.String())
}

func TestStreamPrinterStatusMidStreamReprintsResponse(t *testing.T) {
	var buf bytes.Buffer
	p := &streamPrinter{w: &buf}

	p.partial("Hel")
	p.status("Credits used: 2")
	p.partial("Hello")

	out := buf.String()
	// The notice lands on its own line and the response resumes in full,
	// not as a suffix glued onto the interrupted line.
	assert.Contains(t, out, "Credits used: 2")
	assert.True(t, strings.HasSuffix(out, "\nHello"), "got %q", out)
}

func TestStreamPrinterRetryRestartsBuffer(t *testing.T) {
	var buf bytes.Buffer
	p := &streamPrinter{w: &buf}

	// A failed attempt leaves partial output; the retry's buffer starts
	// over from empty and must print from its own beginning.
	p.partial("first attempt part")
	p.status("Request failed, retrying in 1s (attempt 2 of 3)...")
	p.partial("He")
	p.partial("Hello")

	assert.True(t, strings.HasSuffix(buf.String(), "\nHello"), "got %q", buf.String())
}

func TestStreamPrinterStatusBeforeAnyOutput(t *testing.T) {
	var buf bytes.Buffer
	p := &streamPrinter{w: &buf}

	p.status("Authentication required, redirecting...")
	assert.False(t, strings.HasPrefix(buf.String(), "\n"), "no stray blank line")
}
