// Package history records and lists the tool invocations handled by the Tool Host.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcpjungle/mathtools/internal/model"
	"github.com/mcpjungle/mathtools/pkg/types"
	"gorm.io/gorm"
)

// DefaultListLimit is used when a caller asks for a non-positive number of records.
const DefaultListLimit = 50

// Entry is what the host knows about a finished invocation.
type Entry struct {
	Tool      string
	Arguments map[string]any
	Err       error
	Elapsed   time.Duration
}

// HistoryService stores invocation records in the database.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record stores one invocation.
func (h *HistoryService) Record(e Entry) (*model.Invocation, error) {
	inv := &model.Invocation{
		Tool:       e.Tool,
		Outcome:    types.InvocationOutcomeSuccess,
		DurationMs: e.Elapsed.Milliseconds(),
	}
	if e.Arguments != nil {
		// arguments have already been validated as JSON-compatible, so this is best-effort
		if b, err := json.Marshal(e.Arguments); err == nil {
			inv.Arguments = b
		}
	}
	if e.Err != nil {
		inv.Outcome = types.InvocationOutcomeError
		inv.ErrorKind = types.KindOf(e.Err)
		inv.Message = e.Err.Error()
	}

	if err := h.db.Create(inv).Error; err != nil {
		return nil, fmt.Errorf("failed to record invocation of %s: %w", e.Tool, err)
	}
	return inv, nil
}

// List returns the most recent invocations, newest first.
func (h *HistoryService) List(limit int) ([]model.Invocation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var records []model.Invocation
	if err := h.db.Order("id desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	return records, nil
}

// ToAPI converts a stored record into its API representation.
func ToAPI(m *model.Invocation) *types.Invocation {
	inv := &types.Invocation{
		ID:         m.ID,
		Tool:       m.Tool,
		Outcome:    m.Outcome,
		ErrorKind:  m.ErrorKind,
		Message:    m.Message,
		DurationMs: m.DurationMs,
		CreatedAt:  m.CreatedAt,
	}
	if len(m.Arguments) > 0 {
		// extracting arguments is on best-effort basis
		_ = json.Unmarshal(m.Arguments, &inv.Arguments)
	}
	return inv
}
