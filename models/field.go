package models

import (
	"bytes"
	"encoding/json"
)

// Field is one value of a partial update. The zero value is absent and leaves
// the stored value untouched; a null Field clears it.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Set returns a present Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Clear returns a present Field that clears the stored value.
func Clear[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present reports whether the field carries a non-null value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// Ptr returns nil for absent or null fields.
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Null = true
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// put writes a present field into cols, nil for a cleared one.
func put[T any](cols map[string]any, column string, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		cols[column] = nil
		return
	}
	cols[column] = f.Value
}

// Created is returned by every create operation.
type Created struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
