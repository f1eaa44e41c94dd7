// Package intent talks to the external intent extraction model and
// tolerates malformed output on the way back.
package intent

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
)

// ErrUnparseable indicates no JSON object could be recovered from the model
// output at all.
var ErrUnparseable = errors.New("no JSON object found in model output")

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// DecodeAnalysis extracts a RawAnalysis from model output that may be pure
// JSON, JSON inside a markdown fence, or JSON buried in surrounding prose.
func DecodeAnalysis(output string) (*query.RawAnalysis, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, ErrUnparseable
	}

	// Most common case: the model behaved.
	if raw, ok := tryDecode(output); ok {
		return raw, nil
	}

	// Markdown code fence.
	if m := fencedJSON.FindStringSubmatch(output); len(m) > 1 {
		if raw, ok := tryDecode(m[1]); ok {
			return raw, nil
		}
	}

	// JSON object buried in prose.
	if candidate := extractBalancedObject(output); candidate != "" {
		if raw, ok := tryDecode(candidate); ok {
			return raw, nil
		}
	}

	return nil, ErrUnparseable
}

// tryDecode attempts a strict decode into the raw skeleton.
func tryDecode(s string) (*query.RawAnalysis, bool) {
	raw := &query.RawAnalysis{}
	if err := json.Unmarshal([]byte(s), raw); err != nil {
		return nil, false
	}
	return raw, true
}

// extractBalancedObject returns the first brace-balanced JSON object in s,
// skipping braces inside string literals.
func extractBalancedObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}

	return ""
}
