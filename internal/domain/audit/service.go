package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/toolbridge/pkg/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service provides append-only invocation logging. Log is the ONLY way to
// create records; there are no update or delete operations.
type Service struct {
	db  *sql.DB
	log *slog.Logger
}

func NewService(db *sql.DB, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, log: log}
}

// Log persists one invocation record. ID and CreatedAt are filled when empty.
func (s *Service) Log(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewV7().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	params := rec.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocation_audit (id, tool_name, category, source, status, params, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ToolName, rec.Category, rec.Source, rec.Status,
		string(params), rec.Error, rec.DurationMS, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit: insert record: %w", err)
	}
	return nil
}

// List returns records newest first plus the total count for the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Record, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	where, args := buildFilter(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM invocation_audit" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("audit: count records: %w", err)
	}

	query := `SELECT id, tool_name, category, source, status, params, error, duration_ms, created_at
		FROM invocation_audit` + where + `
		ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("audit: list records: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*Record
	for rows.Next() {
		var (
			rec       Record
			params    string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.ToolName, &rec.Category, &rec.Source, &rec.Status,
			&params, &rec.Error, &rec.DurationMS, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("audit: scan record: %w", err)
		}
		rec.Params = json.RawMessage(params)
		ts, parseErr := time.Parse(time.RFC3339Nano, createdAt)
		if parseErr != nil {
			return nil, 0, fmt.Errorf("audit: parse created_at %q: %w", createdAt, parseErr)
		}
		rec.CreatedAt = ts
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("audit: iterate records: %w", err)
	}

	return out, total, nil
}

func buildFilter(f ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ToolName != "" {
		conds = append(conds, "tool_name = ?")
		args = append(args, f.ToolName)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Recorder consumes invocation events from the bus and persists them.
// Run it in its own goroutine; it exits when ctx is cancelled.
type Recorder struct {
	service *Service
	events  <-chan eventbus.Event
	log     *slog.Logger
}

// NewRecorder subscribes to TopicInvocation on the bus.
func NewRecorder(service *Service, bus eventbus.EventBus) *Recorder {
	return &Recorder{
		service: service,
		events:  bus.Subscribe(TopicInvocation),
		log:     service.log,
	}
}

// Run drains the subscription until ctx is cancelled. A failed insert is
// logged and skipped; the audit log is best-effort, dispatch is not.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-r.events:
			payload, ok := evt.Payload.(InvocationEvent)
			if !ok {
				r.log.Warn("audit: unexpected event payload", "topic", evt.Topic)
				continue
			}
			if err := r.service.Log(ctx, recordFromEvent(payload)); err != nil {
				r.log.Error("audit: persist invocation failed", "tool", payload.ToolName, "err", err)
			}
		}
	}
}

func recordFromEvent(evt InvocationEvent) *Record {
	params := json.RawMessage("{}")
	if len(evt.Params) > 0 {
		if raw, err := json.Marshal(evt.Params); err == nil {
			params = raw
		}
	}
	return &Record{
		ToolName:   evt.ToolName,
		Category:   evt.Category,
		Source:     evt.Source,
		Status:     evt.Status,
		Params:     params,
		Error:      evt.Error,
		DurationMS: evt.Duration.Milliseconds(),
	}
}
