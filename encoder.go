package editable

import (
	"errors"
	"fmt"

	"github.com/pthm/editable/lib/encoding"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates a new encoder with the given signing key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

// ref identifies a trigger element. It is sealed into every trigger's
// hx-vals so clients cannot address arbitrary nodes.
type ref struct {
	Page string `msgpack:"p"`
	Node string `msgpack:"n"`
}

func sealRef(enc *Encoder, page, node string) (string, error) {
	return enc.Seal(ref{Page: page, Node: node})
}

func openRef(enc *Encoder, token string) (ref, error) {
	var r ref
	if token == "" {
		return r, fmt.Errorf("%w: missing", ErrInvalidReference)
	}
	return r, wrapEncodingError(enc.Open(token, &r))
}

// wrapEncodingError wraps encoding package errors with ErrInvalidReference.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) ||
		errors.Is(err, encoding.ErrSignatureInvalid) ||
		errors.Is(err, encoding.ErrDecryptFailed) {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
