package coach

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Vovarama1992/dislike-coach/internal/logger"
)

var (
	fencedJSON   = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	trailingJSON = regexp.MustCompile(`(?s)\{.*\}$`)
)

const previewLen = 200

// Repair recovers a JSON value from raw model text. It tries the whole text,
// then a ```json fenced block, then a {...} span that ends the text.
func Repair(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &v); err == nil {
			return v, nil
		}
	}

	tail := strings.TrimRight(text, " \t\r\n")
	if span := trailingJSON.FindString(tail); span != "" {
		if err := json.Unmarshal([]byte(span), &v); err == nil {
			return v, nil
		}
		// Prose before the object may contain braces of its own.
		if obj, ok := lastObject(tail); ok {
			if err := json.Unmarshal([]byte(obj), &v); err == nil {
				return v, nil
			}
		}
	}

	return nil, &UnparsableOutputError{Preview: logger.Truncate(text, previewLen)}
}

// lastObject returns the balanced top-level {...} span that ends s. Braces
// inside JSON strings are skipped.
func lastObject(s string) (string, bool) {
	end := len(s) - 1
	if end < 0 || s[end] != '}' {
		return "", false
	}

	depth := 0
	inString := false
	for i := end; i >= 0; i-- {
		c := s[i]
		if c == '"' && !escaped(s, i) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return s[i:], true
			}
		}
	}
	return "", false
}

// escaped reports whether the byte at i follows an odd run of backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
