package domain

import (
	"encoding/json"
	"fmt"
)

// Optional is one field of a partial update. An absent JSON key leaves Set false,
// an explicit null sets Set and Null, and any other value sets Set and Value.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a present Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked when the key is present in the payload.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// MarshalJSON writes null for absent or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// HasValue reports a present, non-null value.
func (o Optional[T]) HasValue() bool { return o.Set && !o.Null }

// applyValue copies a present, non-null value into dst. Null is ignored; callers
// reject null for required fields during validation.
func applyValue[T any](o Optional[T], dst *T) {
	if o.HasValue() {
		*dst = o.Value
	}
}

// applyNullable copies a present value into a nullable field, clearing it on null.
func applyNullable[T any](o Optional[T], dst **T) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}

// rejectNull appends a validation message when a required field was sent as null.
func rejectNull[T any](errs []string, field string, o Optional[T]) []string {
	if o.Set && o.Null {
		return append(errs, fmt.Sprintf("%s: cannot be null", field))
	}
	return errs
}
