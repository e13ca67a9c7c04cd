package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := fmt.Errorf("short read")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "no cause",
			err:  New(ErrCodeInvalidParams, "D33 must be positive, got %g", -1.0),
			want: "INVALID_PARAMS: D33 must be positive, got -1",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeCacheRead, cause, "decode table %s", "ab12"),
			want: "CACHE_READ: decode table ab12: short read",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapPreservesChain(t *testing.T) {
	sentinel := errors.New("disk full")
	err := fmt.Errorf("store: %w", Wrap(ErrCodeCacheWrite, sentinel, "write table"))

	if !errors.Is(err, sentinel) {
		t.Error("wrapped cause lost")
	}
	if !Is(err, ErrCodeCacheWrite) {
		t.Error("code lost through fmt.Errorf wrapping")
	}
	if Is(err, ErrCodeCacheRead) {
		t.Error("Is matched the wrong code")
	}

	var e *Error
	if !errors.As(err, &e) || e.Message != "write table" {
		t.Errorf("errors.As = %+v", e)
	}
}

func TestCodeHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
		status  int
	}{
		{"params", New(ErrCodeInvalidParams, "bad T"), ErrCodeInvalidParams, "bad T", http.StatusBadRequest},
		{"orientations", New(ErrCodeInvalidOrientations, "empty set"), ErrCodeInvalidOrientations, "empty set", http.StatusBadRequest},
		{"shape", New(ErrCodeShapeMismatch, "odd"), ErrCodeShapeMismatch, "odd", http.StatusBadRequest},
		{"not found", New(ErrCodeNotFound, "cell"), ErrCodeNotFound, "cell", http.StatusNotFound},
		{"file", New(ErrCodeFileNotFound, "config"), ErrCodeFileNotFound, "config", http.StatusNotFound},
		{"unsupported", New(ErrCodeUnsupported, "pdf"), ErrCodeUnsupported, "pdf", http.StatusNotImplemented},
		{"cache", Wrap(ErrCodeCacheRead, errors.New("eof"), "load"), ErrCodeCacheRead, "load", http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", New(ErrCodeInvalidInput, "x")), ErrCodeInvalidInput, "x", http.StatusBadRequest},
		{"plain", errors.New("boom"), "", "boom", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestIsEmptyCode(t *testing.T) {
	if Is(errors.New("plain"), "") {
		t.Error("a plain error must not match the empty code")
	}
	if Is(nil, ErrCodeInternal) {
		t.Error("nil matched a code")
	}
}
