// Package jsonutil contains tolerant decoding helpers for JSON produced by
// language models, which routinely emit numbers or booleans where the schema
// asks for strings (a slide number for sourceSlide, for example).
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleString converts a json.RawMessage to a string regardless of the
// scalar type the model chose. Returns empty string for null/absent values.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b)
	}

	// Fallback: raw text of whatever the model produced.
	return string(raw)
}

// FlexibleStringTrimmed is FlexibleString with surrounding whitespace removed.
// Model output frequently pads values with stray newlines.
func FlexibleStringTrimmed(raw json.RawMessage) string {
	return strings.TrimSpace(FlexibleString(raw))
}
