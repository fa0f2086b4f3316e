package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionalID tells an omitted id apart from an explicit null. Set is true
// whenever the key was present; Value is nil for null or an empty string.
type OptionalID struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("id must be a string or null: %w", err)
	}
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		o.Value = &trimmed
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsNull reports an explicit unbind.
func (o OptionalID) IsNull() bool {
	return o.Set && o.Value == nil
}

// SomeID wraps a concrete id.
func SomeID(id string) OptionalID {
	return OptionalID{Set: true, Value: &id}
}

// NullID is an explicit null.
func NullID() OptionalID {
	return OptionalID{Set: true}
}
