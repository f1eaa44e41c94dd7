// Package query normalizes the semi-structured intent objects produced by the
// external language-model analyzer into a guaranteed, fully-typed shape.
package query

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes a JSON value that may arrive as a string, a number, a
// bool, a list wrapping one of those, or null. Lists reduce to their first
// element; empty lists and null reduce to the empty string. Decoding never
// fails: anything unrecognized becomes the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = ""
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexString(strconv.FormatBool(b))
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil
		}
		return f.UnmarshalJSON(list[0])
	}

	return nil
}

// String returns the decoded value.
func (f FlexString) String() string {
	return string(f)
}

// IsZero reports whether the value is unknown.
func (f FlexString) IsZero() bool {
	return f == ""
}

// FlexFloat decodes a JSON number that may arrive as a number, a numeric
// string, a list wrapping one of those, or null. Unknown decodes to 0.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			*f = FlexFloat(parsed)
		}
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil
		}
		return f.UnmarshalJSON(list[0])
	}

	return nil
}

// FlexStringList decodes a JSON value that may arrive as a list, a bare
// scalar (wrapped into a single-element list), or null (empty list). Elements
// are trimmed; empty elements are dropped.
type FlexStringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	*f = nil
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, raw := range list {
			var fs FlexString
			if err := fs.UnmarshalJSON(raw); err != nil {
				continue
			}
			if fs != "" {
				out = append(out, fs.String())
			}
		}
		*f = out
		return nil
	}

	var fs FlexString
	if err := fs.UnmarshalJSON(data); err == nil && fs != "" {
		*f = []string{fs.String()}
	}
	return nil
}
