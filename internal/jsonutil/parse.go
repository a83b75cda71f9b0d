// Package jsonutil provides utilities for extracting, repairing, and parsing
// JSON from LLM responses that may be wrapped in markdown code fences,
// embedded in prose, or mangled by escaping mistakes.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNoJSON is returned when the text contains no balanced JSON object or array.
var ErrNoJSON = errors.New("no JSON content found")

// StripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	startIdx := 1 // skip the opening ``` line
	endIdx := len(lines) - 1

	// Find the closing ```
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.Join(lines[startIdx:endIdx], "\n")
}

// ExtractJSON returns the first balanced JSON object or array in text,
// whichever opening delimiter appears first.
func ExtractJSON(text string) (string, error) {
	objIdx := strings.IndexByte(text, '{')
	arrIdx := strings.IndexByte(text, '[')

	switch {
	case objIdx == -1 && arrIdx == -1:
		return "", ErrNoJSON
	case arrIdx == -1 || (objIdx != -1 && objIdx < arrIdx):
		return ExtractBalanced(text, '{')
	default:
		return ExtractBalanced(text, '[')
	}
}

// ExtractBalanced returns the first balanced substring starting at the first
// occurrence of open ('{' or '['). The scan is string- and escape-aware; if
// that fails (typically because the whole document is double-escaped) a
// second scan that only counts delimiters is attempted.
func ExtractBalanced(text string, open byte) (string, error) {
	var closeCh byte
	switch open {
	case '{':
		closeCh = '}'
	case '[':
		closeCh = ']'
	default:
		return "", fmt.Errorf("unsupported delimiter %q", open)
	}

	start := strings.IndexByte(text, open)
	if start == -1 {
		return "", fmt.Errorf("%w: missing %q", ErrNoJSON, open)
	}

	if end := scanBalanced(text[start:], open, closeCh, true); end > 0 {
		return text[start : start+end], nil
	}
	if end := scanBalanced(text[start:], open, closeCh, false); end > 0 {
		return text[start : start+end], nil
	}
	return "", fmt.Errorf("%w: unbalanced %q", ErrNoJSON, open)
}

// scanBalanced returns the length of the balanced prefix of s, or -1.
// s must start with open.
func scanBalanced(s string, open, closeCh byte, stringAware bool) int {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if stringAware {
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			if c == '"' {
				inString = true
				continue
			}
		}
		switch c {
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// ParseJSON strips markdown fences from raw LLM response text, extracts JSON
// content (object or array), and unmarshals it into the provided type T.
// No repair is attempted.
func ParseJSON[T any](raw string) (T, error) {
	var zero T
	text := StripMarkdownFences(raw)
	jsonStr, err := ExtractJSON(text)
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview(jsonStr))
	}
	return result, nil
}

// ParseRepaired extracts the first balanced substring opened by open from raw,
// and unmarshals it into T. When the extracted text does not parse, it is
// passed through Repair and parsed again.
func ParseRepaired[T any](raw string, open byte) (T, error) {
	var zero T
	jsonStr, err := ExtractBalanced(StripMarkdownFences(raw), open)
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	firstErr := json.Unmarshal([]byte(jsonStr), &result)
	if firstErr == nil {
		return result, nil
	}

	repaired := Repair(jsonStr)
	result = zero
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return zero, fmt.Errorf("invalid JSON after repair: %w (before repair: %v; text: %s)", err, firstErr, preview(repaired))
	}
	return result, nil
}

const previewBytes = 200

// preview shortens s for error text without splitting a UTF-8 sequence.
func preview(s string) string {
	if len(s) <= previewBytes {
		return s
	}
	n := previewBytes
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
