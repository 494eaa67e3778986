package tool

import (
	"encoding/json"
	"fmt"
)

// Status tags the outcome of a tool invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPartial Status = "partial"
	StatusTimeout Status = "timeout"
)

// Result is the outcome of a single tool invocation. Exactly one of
// Data/Error is meaningful per status; Partial is the only status where both
// may be populated. Results are created per invocation and never mutated.
type Result struct {
	Status   Status
	Data     any
	Error    string
	Metadata map[string]any
}

// Success returns a successful result carrying data.
func Success(data any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// SuccessWithMeta returns a successful result carrying data and metadata.
func SuccessWithMeta(data any, meta map[string]any) Result {
	return Result{Status: StatusSuccess, Data: data, Metadata: meta}
}

// Errorf returns an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Error: fmt.Sprintf(format, args...)}
}

// Partial returns a best-effort result: usable data plus a caveat.
func Partial(data any, warning string) Result {
	return Result{Status: StatusPartial, Data: data, Error: warning}
}

// notFound is the result Execute returns for a tool the registry does not
// hold. The metadata marker lets callers map it to a lookup failure instead
// of an execution failure.
func notFound(name string) Result {
	return Result{
		Status:   StatusError,
		Error:    fmt.Sprintf("tool %q not found", name),
		Metadata: map[string]any{"notFound": true},
	}
}

// IsNotFound reports whether r is the unknown-tool result from Execute.
func IsNotFound(r Result) bool {
	v, _ := r.Metadata["notFound"].(bool)
	return v
}

// String renders the result for language-model consumption. Error text is
// carried verbatim so the model can decide how to recover.
func (r Result) String() string {
	switch r.Status {
	case StatusSuccess:
		if s, ok := r.Data.(string); ok {
			return s
		}
		raw, err := json.MarshalIndent(r.Data, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", r.Data)
		}
		return string(raw)
	case StatusPartial:
		return fmt.Sprintf("Partial result: %v\nWarning: %s", r.Data, r.Error)
	case StatusTimeout:
		return "Timeout: " + r.Error
	default:
		return "Error: " + r.Error
	}
}

type resultJSON struct {
	Status   Status         `json:"status"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON emits the dispatch boundary shape:
// {status, data?, error?, metadata?}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Status:   r.Status,
		Data:     r.Data,
		Error:    r.Error,
		Metadata: r.Metadata,
	})
}

// UnmarshalJSON accepts the dispatch boundary shape.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Status = raw.Status
	r.Data = raw.Data
	r.Error = raw.Error
	r.Metadata = raw.Metadata
	return nil
}
