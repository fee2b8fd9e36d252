package editable

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for registry and template misuse. These indicate
// programming errors and are never turned into action-error events.
var (
	ErrUnknownVariant    = errors.New("editable: unknown variant")
	ErrDuplicateName     = errors.New("editable: duplicate variant name")
	ErrUnknownTemplate   = errors.New("editable: unknown template")
	ErrDuplicateTemplate = errors.New("editable: duplicate template")
	ErrNotContainer      = errors.New("editable: element is not inside a container")
	ErrInvalidReference  = errors.New("editable: invalid trigger reference")
)

// Failure type tags.
const (
	TypeValidationError  = "ValidationError"
	TypeValidationErrors = "ValidationErrors"
	TypeHTTPError        = "HTTPError"
	TypeTargetError      = "TargetError"
)

// Failure is an expected outcome of export, target construction or target
// execution. Actions route failures through SignalError; anything else is a
// programming error and is returned to the caller.
type Failure interface {
	error
	Type() string
	Info() string
	Data() Data
}

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("editable: field %q: %s", e.Field, e.Message)
}

func (e *ValidationError) Type() string { return TypeValidationError }
func (e *ValidationError) Info() string { return e.Message }
func (e *ValidationError) Data() Data   { return nil }

// ValidationErrors aggregates every field failure of one export together with
// the partial export.
type ValidationErrors struct {
	Errors map[string]string
	Export Data
}

func (e *ValidationErrors) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("editable: %d invalid field(s): %s", len(fields), strings.Join(fields, ", "))
}

func (e *ValidationErrors) Type() string { return TypeValidationErrors }
func (e *ValidationErrors) Info() string { return "" }
func (e *ValidationErrors) Data() Data   { return e.Export }

// HTTPError is a transport failure carrying the response status line.
type HTTPError struct {
	Status     int
	StatusText string
	Payload    Data
}

func (e *HTTPError) Error() string {
	return "editable: http error: " + e.Info()
}

func (e *HTTPError) Type() string { return TypeHTTPError }

// Info returns the status line, e.g. "404 Not Found".
func (e *HTTPError) Info() string {
	return fmt.Sprintf("%d %s", e.Status, e.StatusText)
}

func (e *HTTPError) Data() Data { return e.Payload }

// TargetError is a failure signalled by a target or module without a more
// specific type.
type TargetError struct {
	Kind    string
	Detail  string
	Payload Data
}

func (e *TargetError) Error() string {
	if e.Detail == "" {
		return "editable: " + e.Type()
	}
	return "editable: " + e.Type() + ": " + e.Detail
}

func (e *TargetError) Type() string {
	if e.Kind == "" {
		return TypeTargetError
	}
	return e.Kind
}

func (e *TargetError) Info() string { return e.Detail }
func (e *TargetError) Data() Data   { return e.Payload }

// AsFailure extracts a typed failure from err.
func AsFailure(err error) (Failure, bool) {
	var f Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsValidation checks if err is a single or aggregated validation failure.
func IsValidation(err error) bool {
	f, ok := AsFailure(err)
	if !ok {
		return false
	}
	return f.Type() == TypeValidationError || f.Type() == TypeValidationErrors
}

// IsUnknownVariant checks if err reports an unregistered variant name.
func IsUnknownVariant(err error) bool {
	return errors.Is(err, ErrUnknownVariant)
}

// asSignalled turns any error handed to a Signal into a Failure.
func asSignalled(err error) Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	if err == nil {
		return &TargetError{}
	}
	return &TargetError{Detail: err.Error()}
}

// Humanize returns the user facing summary for a failure type.
func Humanize(reason string) string {
	switch reason {
	case TypeValidationErrors:
		return "Some of the fields contain invalid values - please correct and try again."
	default:
		return "Something went wrong."
	}
}
