package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures reported to the user of a Tool Client.
type ErrorKind string

const (
	// ErrorKindHostUnreachable means no Tool Host could be reached or spawned.
	ErrorKindHostUnreachable ErrorKind = "HostUnreachable"
	// ErrorKindUnknownTool means the invocation named a tool missing from the catalog.
	ErrorKindUnknownTool ErrorKind = "UnknownTool"
	// ErrorKindInvalidArguments means the arguments failed the arity or type check.
	ErrorKindInvalidArguments ErrorKind = "InvalidArguments"
)

var (
	ErrHostUnreachable  = errors.New("host unreachable")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ToolError is a structured error exchanged between host and client.
type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func NewToolError(kind ErrorKind, msg string) *ToolError {
	return &ToolError{Kind: kind, Message: msg}
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is makes ToolError match the sentinel error of its kind.
func (e *ToolError) Is(target error) bool {
	switch e.Kind {
	case ErrorKindHostUnreachable:
		return target == ErrHostUnreachable
	case ErrorKindUnknownTool:
		return target == ErrUnknownTool
	case ErrorKindInvalidArguments:
		return target == ErrInvalidArguments
	}
	return false
}

// ErrorResponse is the body returned by the host API when a request fails.
type ErrorResponse struct {
	Error *ToolError `json:"error"`
}

// KindOf returns the ErrorKind carried by err, or an empty string if err is not a ToolError.
func KindOf(err error) ErrorKind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
