package types

import "time"

// InvocationOutcome is the outcome of a single tool call recorded by the host.
type InvocationOutcome string

const (
	InvocationOutcomeSuccess InvocationOutcome = "success"
	InvocationOutcomeError   InvocationOutcome = "error"
)

// Invocation is a record of one tool call handled by the host.
type Invocation struct {
	ID         uint              `json:"id"`
	Tool       string            `json:"tool"`
	Arguments  map[string]any    `json:"arguments,omitempty"`
	Outcome    InvocationOutcome `json:"outcome"`
	ErrorKind  ErrorKind         `json:"error_kind,omitempty"`
	Message    string            `json:"message,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ServerMetadata describes a running Tool Host.
type ServerMetadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
