package editable

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pthm/editable/lib/encoding"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	errs := []error{
		ErrUnknownVariant,
		ErrDuplicateName,
		ErrUnknownTemplate,
		ErrDuplicateTemplate,
		ErrNotContainer,
		ErrInvalidReference,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
		if !strings.HasPrefix(err1.Error(), "editable:") {
			t.Errorf("Error %q should start with 'editable:'", err1.Error())
		}
	}
}

func TestFailureTypes(t *testing.T) {
	tests := []struct {
		name     string
		failure  Failure
		wantType string
		wantInfo string
	}{
		{"validation error", &ValidationError{Field: "age", Message: "Needs to be a number"}, TypeValidationError, "Needs to be a number"},
		{"validation errors", &ValidationErrors{Errors: map[string]string{"age": "x"}}, TypeValidationErrors, ""},
		{"http error", &HTTPError{Status: 404, StatusText: "Not Found"}, TypeHTTPError, "404 Not Found"},
		{"target error", &TargetError{Detail: "boom"}, TypeTargetError, "boom"},
		{"custom kind", &TargetError{Kind: "ListingError", Detail: "no list"}, "ListingError", "no list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.failure.Type(); got != tt.wantType {
				t.Errorf("Type() = %q, want %q", got, tt.wantType)
			}
			if got := tt.failure.Info(); got != tt.wantInfo {
				t.Errorf("Info() = %q, want %q", got, tt.wantInfo)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	err := &ValidationErrors{Errors: map[string]string{"b": "x", "a": "y"}}
	if got := err.Error(); got != "editable: 2 invalid field(s): a, b" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAsFailure(t *testing.T) {
	he := &HTTPError{Status: 500, StatusText: "Internal Server Error"}
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{"nil error", nil, nil},
		{"plain error", errors.New("other"), nil},
		{"direct", he, he},
		{"wrapped", fmt.Errorf("posting: %w", he), he},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsFailure(tt.err)
			if ok != (tt.want != nil) || got != tt.want {
				t.Errorf("AsFailure(%v) = %v, %v", tt.err, got, ok)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"single", &ValidationError{}, true},
		{"aggregate", &ValidationErrors{}, true},
		{"wrapped aggregate", fmt.Errorf("export: %w", &ValidationErrors{}), true},
		{"http error", &HTTPError{}, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsValidation(tt.err); result != tt.expect {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsUnknownVariant(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrUnknownVariant", ErrUnknownVariant, true},
		{"wrapped", fmt.Errorf("%w: action %q", ErrUnknownVariant, "x"), true},
		{"ErrDuplicateName", ErrDuplicateName, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsUnknownVariant(tt.err); result != tt.expect {
				t.Errorf("IsUnknownVariant(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestAsSignalled(t *testing.T) {
	he := &HTTPError{Status: 502}
	if got := asSignalled(he); got != he {
		t.Errorf("typed failure should pass through, got %v", got)
	}
	got := asSignalled(errors.New("disk full"))
	if got.Type() != TypeTargetError || got.Info() != "disk full" {
		t.Errorf("plain error became %s/%q", got.Type(), got.Info())
	}
	if got := asSignalled(nil); got.Type() != TypeTargetError {
		t.Errorf("nil became %s", got.Type())
	}
}

func TestHumanize(t *testing.T) {
	if got := Humanize(TypeValidationErrors); !strings.Contains(got, "invalid values") {
		t.Errorf("Humanize(ValidationErrors) = %q", got)
	}
	for _, reason := range []string{TypeHTTPError, TypeTargetError, "ListingError", ""} {
		if got := Humanize(reason); got != "Something went wrong." {
			t.Errorf("Humanize(%q) = %q", reason, got)
		}
	}
}

func TestWrapEncodingError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		invalid bool
	}{
		{"nil error", nil, false},
		{"encoding.ErrInvalidFormat", encoding.ErrInvalidFormat, true},
		{"encoding.ErrSignatureInvalid", encoding.ErrSignatureInvalid, true},
		{"encoding.ErrDecryptFailed", encoding.ErrDecryptFailed, true},
		{"other error passthrough", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := wrapEncodingError(tt.err)
			if got := errors.Is(result, ErrInvalidReference); got != tt.invalid {
				t.Errorf("wrapEncodingError(%v) = %v, invalid reference %v", tt.err, result, got)
			}
			if tt.err != nil && !tt.invalid && result != tt.err {
				t.Errorf("wrapEncodingError(%v) should pass through, got %v", tt.err, result)
			}
		})
	}
}

func TestRefRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	token, err := sealRef(enc, "customers", "save")
	if err != nil {
		t.Fatal(err)
	}
	got, err := openRef(enc, token)
	if err != nil {
		t.Fatalf("openRef failed: %v", err)
	}
	if got != (ref{Page: "customers", Node: "save"}) {
		t.Errorf("got %+v", got)
	}
	if _, err := openRef(enc, ""); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("empty token: %v", err)
	}
	other, _ := NewEncoder([]byte("other-key"))
	if _, err := openRef(other, token); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("foreign key: %v", err)
	}
}
