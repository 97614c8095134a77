// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapLineShortPassesThrough(t *testing.T) {
	assert.Equal(t, "hello world", wrapLine("hello world", 20))
}

func TestWrapLineBreaksAtWidth(t *testing.T) {
	got := wrapLine("aaa bbb ccc ddd", 7)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 7)
	}
	assert.Equal(t, "aaa bbb ccc ddd", strings.ReplaceAll(got, "\n", " "))
}

func TestWrapTextPreservesExistingNewlines(t *testing.T) {
	got := wrapText("one\ntwo", 80)
	assert.Equal(t, "one\ntwo", got)
}

func TestWrapTextWideRunes(t *testing.T) {
	// CJK runes are double-width; four of them exceed a width of 7.
	got := wrapLine("日本 語語 語語", 5)
	assert.Contains(t, got, "\n")
}

func TestTruncateLine(t *testing.T) {
	assert.Equal(t, "short", truncateLine("short", 10))
	got := truncateLine("a very long status line", 10)
	assert.True(t, strings.HasSuffix(got, "…"))
}
