package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_IsMatchesCode(t *testing.T) {
	err := WithStatus(ErrBackend, http.StatusBadRequest, "Budget already exists")
	if !errors.Is(err, ErrBackend) {
		t.Error("WithStatus should still match its sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("different codes must not match")
	}

	wrapped := fmt.Errorf("creating budget: %w", err)
	if !errors.Is(wrapped, ErrBackend) {
		t.Error("fmt wrapping should keep the match")
	}
}

func TestWrap_KeepsInternal(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrNetwork, cause)
	if !errors.Is(err, cause) {
		t.Error("Wrap should unwrap to the internal error")
	}
	if err.Message != ErrNetwork.Message {
		t.Errorf("Message = %q", err.Message)
	}
	if got := err.Error(); got == ErrNetwork.Message {
		t.Errorf("Error() should include the internal cause, got %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"backend detail", WithStatus(ErrBackend, 400, "Budget already exists for Food in 1/2025"), "Budget already exists for Food in 1/2025"},
		{"network", Wrap(ErrNetwork, errors.New("dial tcp")), "Request failed"},
		{"wrapped", fmt.Errorf("loading: %w", ErrUnauthorized), ErrUnauthorized.Message},
		{"plain", errors.New("boom"), "An internal error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(WithStatus(ErrNotFound, 404, "gone")); got != 404 {
		t.Errorf("StatusCode = %d", got)
	}
	if got := StatusCode(errors.New("x")); got != 0 {
		t.Errorf("StatusCode = %d", got)
	}
}
