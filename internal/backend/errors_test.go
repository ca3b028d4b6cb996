package backend

import (
	"errors"
	"strings"
	"testing"
)

func TestError_MessageRendersVerbatim(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
	}{
		{"precondition", NewPreconditionError("No training data found. Please split your dataset first.")},
		{"remote", NewRemoteError("/model/train", "Dataset shape mismatch", 400)},
		{"transport", NewTransportError("/shape", "request failed", errors.New("dial tcp: refused"))},
		{"validation", NewValidationError("/describe", "response missing columns")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.err.Message {
				t.Errorf("Error() = %q, want the bare message %q", got, tt.err.Message)
			}
		})
	}
}

func TestError_DetailCarriesDiagnostics(t *testing.T) {
	err := NewRemoteError("/model/train", "Dataset shape mismatch", 400)

	detail := err.Detail()
	for _, want := range []string{"type=remote", "endpoint=/model/train", "status=400", "Dataset shape mismatch"} {
		if !strings.Contains(detail, want) {
			t.Errorf("Detail() = %q, missing %q", detail, want)
		}
	}
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewTransportError("/shape", "request failed", cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to reach the transport cause")
	}
}
