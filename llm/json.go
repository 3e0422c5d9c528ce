package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON finds the JSON object embedded in a model response. It tries the
// span from the first '{' to the last '}' and, when that is not valid JSON,
// the first balanced object.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	if end := strings.LastIndexByte(text, '}'); end > start {
		if span := text[start : end+1]; json.Valid([]byte(span)) {
			return span, true
		}
	}
	if span, ok := balancedObject(text[start:]); ok && json.Valid([]byte(span)) {
		return span, true
	}
	return "", false
}

// balancedObject returns the prefix of s that closes its opening brace,
// skipping braces inside string literals.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// decodeObject extracts and decodes the first JSON object in text into v.
func decodeObject(text string, v any) bool {
	span, ok := ExtractJSON(text)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(span), v) == nil
}

// flexString accepts a JSON string or number, since models often emit prices as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
