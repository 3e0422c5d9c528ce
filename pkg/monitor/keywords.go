package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// KeywordCategory maps one announcement category to its trigger keywords.
type KeywordCategory struct {
	Category string
	Keywords []string
}

// KeywordMap is an ordered category → keywords map.
// Matching walks it in order, so it is encoded as a JSON/YAML object but
// decoded into a slice to keep the configured order.
type KeywordMap []KeywordCategory

// MarshalJSON writes the map as a JSON object in configured order.
func (m KeywordMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, fmt.Errorf("marshal category: %w", err)
		}
		words := c.Keywords
		if words == nil {
			words = []string{}
		}
		val, err := json.Marshal(words)
		if err != nil {
			return nil, fmt.Errorf("marshal keywords: %w", err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order.
func (m *KeywordMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("keyword map: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("keyword map: expected object")
	}

	var out KeywordMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("keyword map: %w", err)
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("keyword map: unexpected key %v", tok)
		}
		var words []string
		if err := dec.Decode(&words); err != nil {
			return fmt.Errorf("keyword map %q: %w", category, err)
		}
		out = append(out, KeywordCategory{Category: category, Keywords: words})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("keyword map: %w", err)
	}

	*m = out
	return nil
}

// UnmarshalYAML reads a YAML mapping, preserving key order.
func (m *KeywordMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("keyword map: expected mapping at line %d", node.Line)
	}
	out := make(KeywordMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var words []string
		if err := node.Content[i+1].Decode(&words); err != nil {
			return fmt.Errorf("keyword map %q: %w", node.Content[i].Value, err)
		}
		out = append(out, KeywordCategory{Category: node.Content[i].Value, Keywords: words})
	}
	*m = out
	return nil
}
