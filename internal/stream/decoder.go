// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Event is one decoded record from the response stream. It is a closed set:
// ContentDelta, UsageFinal or Malformed.
type Event interface {
	event()
}

// ContentDelta carries an incremental piece of assistant text.
type ContentDelta struct {
	Text  string
	Model string
}

// UsageFinal carries the usage summary the service emits near the end of a
// stream. It is not guaranteed to be the last record, and it does not
// terminate the stream.
type UsageFinal struct {
	Credits float64
}

// Malformed wraps a line that failed to parse. Callers log it and move on;
// it never affects sibling records or the stream outcome.
type Malformed struct {
	Raw []byte
}

func (ContentDelta) event() {}
func (UsageFinal) event()   {}
func (Malformed) event()    {}

// record mirrors the two wire shapes the service emits. Pointer fields
// distinguish "absent" from "zero" when classifying a line.
type record struct {
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Model   string   `json:"model"`
	Credits *float64 `json:"Credits"`
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns a raw byte stream into a sequence of events. It is a lazy,
// non-restartable reader: each Next call pulls at most one record from the
// underlying body.
type Decoder struct {
	reader *bufio.Reader
	// err is a sticky read failure. A clean end-of-data is io.EOF; anything
	// else means the body broke mid-stream and must surface to the caller,
	// never be mistaken for completion.
	err  error
	done bool
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: bufio.NewReader(r)}
}

// Next returns the next event from the stream. Once the underlying byte
// stream ends it returns io.EOF for a clean end-of-data, or the read error
// for a broken body; either is sticky. Blank lines are skipped.
func (d *Decoder) Next() (Event, error) {
	if d.done {
		if d.err != nil {
			return nil, d.err
		}
		return nil, io.EOF
	}

	for {
		line, err := d.reader.ReadBytes('\n')
		if err != nil {
			d.done = true
			if err != io.EOF {
				d.err = err
			}
			if len(bytes.TrimSpace(line)) > 0 {
				// The remainder before the failure still parses as a record
				// (a complete one when the body merely lacked a trailing
				// newline); a read failure surfaces on the next call.
				return parseLine(line), nil
			}
			if d.err != nil {
				return nil, d.err
			}
			return nil, io.EOF
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return parseLine(line), nil
	}
}

// parseLine maps one non-blank line to an event.
func parseLine(line []byte) Event {
	line = bytes.TrimSpace(line)

	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Malformed{Raw: append([]byte(nil), line...)}
	}

	switch {
	case rec.Credits != nil:
		return UsageFinal{Credits: *rec.Credits}
	case rec.Message != nil:
		return ContentDelta{Text: rec.Message.Content, Model: rec.Model}
	default:
		// Valid JSON but not a shape we recognize.
		return Malformed{Raw: append([]byte(nil), line...)}
	}
}
