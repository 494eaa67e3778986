package handlers

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// stubTool is a minimal executable tool for handler tests.
type stubTool struct {
	name    string
	params  map[string]tool.Param
	execute func(ctx context.Context, params map[string]any) tool.Result
}

func (s *stubTool) Schema() tool.Schema {
	return tool.Schema{Name: s.name, Description: "stub tool", Params: s.params}
}

func (s *stubTool) Execute(ctx context.Context, params map[string]any) tool.Result {
	if s.execute != nil {
		return s.execute(ctx, params)
	}
	return tool.Success("ok")
}

func (s *stubTool) Timeout() time.Duration { return 0 }

func newTestRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	return tool.NewRegistry(slog.New(slog.DiscardHandler), 0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParsePaginationParams(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", defaultPaginationLimit, 0},
		{"explicit", "?limit=10&offset=20", 10, 20},
		{"clamped", "?limit=9999", maxPaginationLimit, 0},
		{"garbage", "?limit=abc&offset=-5", defaultPaginationLimit, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/api/v1/audit/invocations"+tc.query, nil)
			got := parsePaginationParams(req)
			if got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
				t.Fatalf("parsePaginationParams(%q) = %+v, want limit=%d offset=%d",
					tc.query, got, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
