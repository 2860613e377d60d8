// Package model contains the database models used by mathtools.
package model

import (
	"github.com/mcpjungle/mathtools/pkg/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invocation records one tool call handled by the Tool Host.
type Invocation struct {
	gorm.Model

	// Tool is the name the caller asked for, which may not be a registered tool.
	Tool string `json:"tool" gorm:"not null;index"`

	// Arguments is the JSON encoding of the bound keyword arguments.
	Arguments datatypes.JSON `json:"arguments" gorm:"type:jsonb"`

	Outcome   types.InvocationOutcome `json:"outcome" gorm:"type:varchar(20);not null"`
	ErrorKind types.ErrorKind         `json:"error_kind" gorm:"type:varchar(30)"`
	Message   string                  `json:"message"`

	DurationMs int64 `json:"duration_ms"`
}
