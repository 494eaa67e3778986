package audit_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/sqlite"
)

func newTestService(t *testing.T) (*audit.Service, *sql.DB) {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp error = %v", err)
	}
	return audit.NewService(db, slog.New(slog.DiscardHandler)), db
}

func TestService_LogAndList(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Log(ctx, &audit.Record{
		ToolName:   "calculator",
		Category:   "math",
		Source:     "pattern",
		Status:     "success",
		Params:     json.RawMessage(`{"expression":"25 * 4"}`),
		DurationMS: 3,
	})
	if err != nil {
		t.Fatalf("Log error = %v", err)
	}

	recs, total, err := svc.List(ctx, audit.ListFilter{})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if total != 1 || len(recs) != 1 {
		t.Fatalf("expected 1 record, got total=%d len=%d", total, len(recs))
	}

	rec := recs[0]
	if rec.ID == "" {
		t.Error("expected generated ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be filled")
	}
	if rec.ToolName != "calculator" || rec.Source != "pattern" || rec.Status != "success" {
		t.Errorf("unexpected record: %+v", rec)
	}
	var params map[string]any
	if err := json.Unmarshal(rec.Params, &params); err != nil {
		t.Fatalf("params not valid JSON: %v", err)
	}
	if params["expression"] != "25 * 4" {
		t.Errorf("unexpected params: %v", params)
	}
}

func TestService_List_NewestFirst(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		err := svc.Log(ctx, &audit.Record{
			ToolName:  name,
			Source:    audit.SourceAPI,
			Status:    "success",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Log error = %v", err)
		}
	}

	recs, _, err := svc.List(ctx, audit.ListFilter{})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].ToolName != "third" || recs[2].ToolName != "first" {
		t.Errorf("expected newest first, got %q, %q, %q",
			recs[0].ToolName, recs[1].ToolName, recs[2].ToolName)
	}
}

func TestService_List_Filters(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []audit.Record{
		{ToolName: "calculator", Source: "native", Status: "success"},
		{ToolName: "calculator", Source: "pattern", Status: "error"},
		{ToolName: "time_now", Source: "pattern", Status: "success"},
	}
	for i := range seed {
		if err := svc.Log(ctx, &seed[i]); err != nil {
			t.Fatalf("Log error = %v", err)
		}
	}

	recs, total, err := svc.List(ctx, audit.ListFilter{ToolName: "calculator"})
	if err != nil {
		t.Fatalf("List(tool) error = %v", err)
	}
	if total != 2 || len(recs) != 2 {
		t.Errorf("tool filter: expected 2, got total=%d len=%d", total, len(recs))
	}

	recs, total, err = svc.List(ctx, audit.ListFilter{ToolName: "calculator", Status: "error"})
	if err != nil {
		t.Fatalf("List(tool+status) error = %v", err)
	}
	if total != 1 || len(recs) != 1 || recs[0].Status != "error" {
		t.Errorf("combined filter: expected the single error row, got total=%d recs=%+v", total, recs)
	}
}

func TestService_List_Pagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := svc.Log(ctx, &audit.Record{
			ToolName:  "calculator",
			Source:    audit.SourceAPI,
			Status:    "success",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Log error = %v", err)
		}
	}

	recs, total, err := svc.List(ctx, audit.ListFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(recs) != 2 {
		t.Errorf("expected page of 2, got %d", len(recs))
	}
}

func TestRecorder_PersistsBusEvents(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	bus := eventbus.New()
	rec := audit.NewRecorder(svc, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	bus.Publish(audit.TopicInvocation, audit.InvocationEvent{
		ToolName: "time_now",
		Category: "time",
		Source:   "pattern",
		Status:   "success",
		Params:   map[string]any{"timezone": "seoul"},
		Duration: 4 * time.Millisecond,
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		recs, total, err := svc.List(context.Background(), audit.ListFilter{ToolName: "time_now"})
		if err != nil {
			t.Fatalf("List error = %v", err)
		}
		if total == 1 {
			if recs[0].Source != "pattern" || recs[0].DurationMS != 4 {
				t.Errorf("unexpected persisted record: %+v", recs[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for recorder to persist the event")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
