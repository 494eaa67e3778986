package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

func fixedClock(t *testing.T) *Clock {
	t.Helper()
	c := NewClock()
	c.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return c
}

func TestClock_DefaultsToSeoul(t *testing.T) {
	t.Parallel()

	res := fixedClock(t).Execute(context.Background(), map[string]any{})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %s, error = %q", res.Status, res.Error)
	}
	data := res.Data.(map[string]any)
	if data["timezone"] != "Asia/Seoul" {
		t.Fatalf("timezone = %v, want Asia/Seoul", data["timezone"])
	}
	// 12:00 UTC is 21:00 KST same day.
	if iso := data["iso"].(string); iso != "2025-06-15T21:00:00+09:00" {
		t.Fatalf("iso = %q", iso)
	}
}

func TestClock_ResolvesAliases(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"서울":       "Asia/Seoul",
		"Tokyo":    "Asia/Tokyo",
		"new york": "America/New_York",
		"UTC":      "UTC",
		"뉴욕":       "America/New_York",
	}
	for alias, want := range cases {
		res := fixedClock(t).Execute(context.Background(), map[string]any{"timezone": alias})
		if res.Status != tool.StatusSuccess {
			t.Fatalf("alias %q: status = %s, error = %q", alias, res.Status, res.Error)
		}
		if got := res.Data.(map[string]any)["timezone"]; got != want {
			t.Fatalf("alias %q resolved to %v, want %s", alias, got, want)
		}
	}
}

func TestClock_UnknownZone(t *testing.T) {
	t.Parallel()

	res := fixedClock(t).Execute(context.Background(), map[string]any{"timezone": "Nowhere/Atlantis"})
	if res.Status != tool.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
}
