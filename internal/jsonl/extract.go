// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonl pulls tagged payloads out of line-delimited JSON dumps.
//
// A dump is a blob of newline-separated JSON values. Lines shaped like
// {"type": "RECORD", "record": {...}} carry the payloads; every other line
// (SCHEMA, STATE, SECTION, ...) is skipped. A line that is not valid JSON
// fails the whole extraction.
package jsonl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TypeRecord is the tag of lines that carry a record payload.
const TypeRecord = "RECORD"

// maxQuoted bounds how much of a malformed line is kept in errors.
const maxQuoted = 80

// MalformedLineError reports a line that is not valid JSON.
type MalformedLineError struct {
	// Line is the 1-based line number within the trimmed blob.
	Line int

	// Text is the offending line, truncated.
	Text string

	Err error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: malformed JSON %q: %v", e.Line, e.Text, e.Err)
}

func (e *MalformedLineError) Unwrap() error { return e.Err }

// Extract returns the record payload of every RECORD line in blob, in input
// order, each re-encoded as compact JSON. An empty blob yields an empty
// slice. Any malformed line aborts the call and no payloads are returned.
func Extract(blob string) ([]string, error) {
	return ExtractType(blob, TypeRecord)
}

// ExtractType is Extract with a caller-chosen type tag.
func ExtractType(blob, tag string) ([]string, error) {
	out := []string{}

	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return out, nil
	}

	for i, line := range strings.Split(trimmed, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		payload, ok, err := selectPayload([]byte(line), tag)
		if err != nil {
			return nil, &MalformedLineError{Line: i + 1, Text: quote(line), Err: err}
		}
		if ok {
			out = append(out, payload)
		}
	}

	return out, nil
}

// selectPayload parses one line. It reports ok when the line is an object
// tagged with tag, returning its compacted record field.
func selectPayload(line []byte, tag string) (string, bool, error) {
	var v any
	if err := json.Unmarshal(line, &v); err != nil {
		return "", false, err
	}

	// Valid JSON that is not an object, or has no string tag, is skipped.
	if _, isObject := v.(map[string]any); !isObject {
		return "", false, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return "", false, err
	}

	var lineType string
	if raw, ok := fields["type"]; !ok || json.Unmarshal(raw, &lineType) != nil || lineType != tag {
		return "", false, nil
	}

	record, ok := fields["record"]
	if !ok {
		return "null", true, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, record); err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}

func quote(line string) string {
	line = strings.TrimSpace(line)
	if len(line) <= maxQuoted {
		return line
	}
	return line[:maxQuoted-3] + "..."
}
