package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "invalid format: %q", "gif")
	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidFormat)
	}
	if !strings.Contains(err.Error(), "INVALID_FORMAT") {
		t.Errorf("Error() = %q, want code prefix", err.Error())
	}
	if !strings.Contains(err.Error(), `"gif"`) {
		t.Errorf("Error() = %q, want formatted message", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeInternal, cause, "layout %s", "resnet")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got := err.Error(); !strings.Contains(got, "connection refused") {
		t.Errorf("Error() = %q, want cause included", got)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeGraphNotFound, "graph %q not found", "g1")
	wrapped := fmt.Errorf("lookup: %w", err)

	if !Is(wrapped, ErrCodeGraphNotFound) {
		t.Error("Is should find code through wrapping")
	}
	if Is(wrapped, ErrCodeInvalidFormat) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeGraphNotFound) {
		t.Error("Is should not match plain errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidEngine, "bad")); got != ErrCodeInvalidEngine {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeInvalidEngine)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidScale, "scale must be positive")
	if got := UserMessage(err); got != "scale must be positive" {
		t.Errorf("UserMessage = %q, want message without code", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
