package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolErrorIs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{ErrorKindHostUnreachable, ErrHostUnreachable},
		{ErrorKindUnknownTool, ErrUnknownTool},
		{ErrorKindInvalidArguments, ErrInvalidArguments},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewToolError(tc.kind, "boom"))
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("Expected %v to match %v", err, tc.sentinel)
			}
			if KindOf(err) != tc.kind {
				t.Errorf("Expected kind %s, got %s", tc.kind, KindOf(err))
			}
		})
	}
}

func TestToolErrorDoesNotMatchOtherKinds(t *testing.T) {
	t.Parallel()

	err := NewToolError(ErrorKindUnknownTool, "divide")
	if errors.Is(err, ErrInvalidArguments) {
		t.Error("UnknownTool must not match ErrInvalidArguments")
	}
	if errors.Is(err, ErrHostUnreachable) {
		t.Error("UnknownTool must not match ErrHostUnreachable")
	}
	if err.Error() != "UnknownTool: divide" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
}

func TestKindOfPlainError(t *testing.T) {
	t.Parallel()

	if k := KindOf(errors.New("plain")); k != "" {
		t.Errorf("Expected empty kind, got %s", k)
	}
}
