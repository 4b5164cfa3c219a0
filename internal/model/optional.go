package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON key, an explicit null and a value.
// The zero value is absent.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

// Null returns a present Optional holding an explicit null.
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

// IsNull reports an explicit null.
func (o Optional[T]) IsNull() bool { return o.Set && o.Value == nil }

// Get returns the value when present and non-null.
func (o Optional[T]) Get() (T, bool) {
	if o.Set && o.Value != nil {
		return *o.Value, true
	}
	var zero T
	return zero, false
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
