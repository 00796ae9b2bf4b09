// Package payload extracts named fields from decrypted secrets documents.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed   = errors.New("secrets payload is not a valid JSON object")
	ErrKeyNotFound = errors.New("key not found in secrets payload")
	ErrKeyType     = errors.New("key is not a JSON string")
)

// Extract parses plaintext as a JSON object and returns the string value at
// key, verbatim. The decoded document is discarded on return; only the
// requested field survives. Error messages report the key and the kind of a
// wrong-typed value, never the value.
func Extract(plaintext []byte, key string) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(plaintext), &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc == nil {
		// "null" decodes into a nil map without error
		return "", fmt.Errorf("%w: document is null", ErrMalformed)
	}

	value, ok := doc[key]
	if !ok {
		return "", fmt.Errorf("key %q: %w", key, ErrKeyNotFound)
	}

	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("key %q: %w (got %s)", key, ErrKeyType, jsonKind(value))
	}
	return s, nil
}

// jsonKind names the JSON type of a value decoded into an any.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
