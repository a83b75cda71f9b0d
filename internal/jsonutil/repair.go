package jsonutil

import (
	"encoding/json"
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// repairStages run in order; Repair stops at the first stage whose output is
// valid JSON. Structural fixes come before the escape fixes so a document with
// legitimate \" inside strings is not unescaped just to drop a trailing comma.
var repairStages = []func(string) string{
	stripTrailingCommas,
	dropInvalidEscapes,
	collapseWhitespace,
	unescapeQuotes,
}

// Repair applies a fixed sequence of string fixes for the mistakes LLMs
// commonly make when emitting JSON: trailing commas before a closing bracket,
// backslashes before characters that are not JSON escapes, raw or escaped
// newlines and tabs, and a whole document that was escaped one level too deep.
//
// Repair is best effort. Its output is not guaranteed to be valid JSON.
// Input that is already valid is returned unchanged.
func Repair(s string) string {
	if json.Valid([]byte(s)) {
		return s
	}
	for _, stage := range repairStages {
		s = stage(s)
		if json.Valid([]byte(s)) {
			return s
		}
	}
	// Unescaping can expose new trailing commas or stray backslashes.
	return dropInvalidEscapes(stripTrailingCommas(s))
}

func stripTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}

// dropInvalidEscapes removes a backslash when the next character is not one of
// the JSON escape characters. Valid pairs such as \\ and \" are skipped whole.
func dropInvalidEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			break
		}
		switch s[i+1] {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		}
	}
	return b.String()
}

var whitespaceReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
	`\r\n`, " ",
	`\n`, " ",
	`\r`, " ",
	`\t`, " ",
)

func collapseWhitespace(s string) string {
	return whitespaceReplacer.Replace(s)
}

var unescapeReplacer = strings.NewReplacer(
	`\"`, `"`,
	`\\`, `\`,
)

func unescapeQuotes(s string) string {
	return unescapeReplacer.Replace(s)
}
