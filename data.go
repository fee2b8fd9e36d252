package editable

import "strings"

// Reserved keys of an exported data object.
const (
	KeyValid            = "_valid"
	KeyValidationErrors = "_validationErrors"
	KeyID               = "_id"
)

// Data is an exported data object: field name to value, plus the reserved
// underscore keys. It is rebuilt on every export and never stored by the
// engine.
type Data map[string]any

// Valid reports the _valid flag.
func (d Data) Valid() bool {
	v, _ := d[KeyValid].(bool)
	return v
}

// ValidationErrors returns the _validationErrors map.
func (d Data) ValidationErrors() map[string]string {
	m, _ := d[KeyValidationErrors].(map[string]string)
	return m
}

// ID returns the identity copied from the container.
func (d Data) ID() (string, bool) {
	v, ok := d[KeyID].(string)
	return v, ok
}

// Clean returns a copy without underscore-prefixed keys.
func (d Data) Clean() Data {
	out := make(Data, len(d))
	for k, v := range d {
		if !strings.HasPrefix(k, "_") {
			out[k] = v
		}
	}
	return out
}

// Payload returns the copy sent to targets: field values and _id, without
// the validation bookkeeping.
func (d Data) Payload() Data {
	out := make(Data, len(d))
	for k, v := range d {
		if k == KeyValid || k == KeyValidationErrors {
			continue
		}
		out[k] = v
	}
	return out
}
