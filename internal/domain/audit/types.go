// Package audit keeps an append-only log of tool invocations in SQLite.
// Records flow in through the event bus so the dispatch hot path never
// waits on a disk write.
package audit

import (
	"encoding/json"
	"time"
)

// TopicInvocation is the event bus topic dispatch paths publish on.
const TopicInvocation = "tool.invoked"

// SourceAPI marks invocations that arrived via the direct execute endpoint
// rather than a routing strategy.
const SourceAPI = "api"

// InvocationEvent is the bus payload published after every dispatch.
type InvocationEvent struct {
	ToolName string
	Category string
	Source   string // routing strategy ("native"|"query"|"pattern") or "api"
	Status   string // mirrors the result status
	Params   map[string]any
	Error    string
	Duration time.Duration
}

// Record is one persisted audit row. Immutable once written — the table is
// append-only, no updates or deletes.
type Record struct {
	ID         string          `json:"id"`
	ToolName   string          `json:"toolName"`
	Category   string          `json:"category,omitempty"`
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	Params     json.RawMessage `json:"params,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"durationMs"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ListFilter narrows a listing query. Zero values mean "no filter";
// Limit defaults to 50 and is capped at 500.
type ListFilter struct {
	ToolName string
	Status   string
	Limit    int
	Offset   int
}
