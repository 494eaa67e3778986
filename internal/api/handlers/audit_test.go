package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/sqlite"
)

func newTestAuditService(t *testing.T) *audit.Service {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp error = %v", err)
	}
	return audit.NewService(db, discardLogger())
}

func TestAuditHandler_ListInvocations(t *testing.T) {
	t.Parallel()

	svc := newTestAuditService(t)
	ctx := context.Background()
	for _, rec := range []*audit.Record{
		{ToolName: "calculator", Source: "pattern", Status: "success", DurationMS: 2},
		{ToolName: "time_now", Source: "native", Status: "success", DurationMS: 1},
		{ToolName: "calculator", Source: "query", Status: "error", Error: "division by zero", DurationMS: 3},
	} {
		if err := svc.Log(ctx, rec); err != nil {
			t.Fatalf("Log error = %v", err)
		}
	}

	h := NewAuditHandler(svc)

	rr := httptest.NewRecorder()
	h.ListInvocations(rr, httptest.NewRequest(http.MethodGet, "/api/v1/audit/invocations", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp struct {
		Data []audit.Record `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 3 || resp.Meta["total"] != 3 {
		t.Fatalf("expected 3 records, got %d (meta %v)", len(resp.Data), resp.Meta)
	}

	filterRR := httptest.NewRecorder()
	h.ListInvocations(filterRR, httptest.NewRequest(http.MethodGet, "/api/v1/audit/invocations?tool=calculator&status=error", nil))
	if err := json.NewDecoder(filterRR.Body).Decode(&resp); err != nil {
		t.Fatalf("decode filtered response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Error != "division by zero" {
		t.Fatalf("filter returned %+v", resp.Data)
	}

	pageRR := httptest.NewRecorder()
	h.ListInvocations(pageRR, httptest.NewRequest(http.MethodGet, "/api/v1/audit/invocations?limit=2&offset=2", nil))
	if err := json.NewDecoder(pageRR.Body).Decode(&resp); err != nil {
		t.Fatalf("decode paged response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Meta["total"] != 3 || resp.Meta["limit"] != 2 || resp.Meta["offset"] != 2 {
		t.Fatalf("paging returned %d records, meta %v", len(resp.Data), resp.Meta)
	}
}

func TestAuditHandler_NoStorage(t *testing.T) {
	t.Parallel()

	h := NewAuditHandler(nil)

	rr := httptest.NewRecorder()
	h.ListInvocations(rr, httptest.NewRequest(http.MethodGet, "/api/v1/audit/invocations", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusServiceUnavailable)
	}
}
