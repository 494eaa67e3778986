package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

func TestHTTPFetch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong")) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	res := NewHTTPFetch(srv.Client()).Execute(context.Background(), map[string]any{"url": srv.URL})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %s, error = %q", res.Status, res.Error)
	}
	data := res.Data.(map[string]any)
	if data["body"] != "pong" {
		t.Fatalf("body = %q", data["body"])
	}
	if data["status"] != 200 {
		t.Fatalf("status code = %v", data["status"])
	}
}

func TestHTTPFetch_UpstreamErrorIsPartial(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	res := NewHTTPFetch(srv.Client()).Execute(context.Background(), map[string]any{"url": srv.URL})
	if res.Status != tool.StatusPartial {
		t.Fatalf("status = %s, want partial", res.Status)
	}
	if !strings.Contains(res.Error, "500") {
		t.Fatalf("warning = %q", res.Error)
	}
}

func TestHTTPFetch_RejectsNonHTTPSchemes(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"ftp://example.com/x", "file:///etc/passwd", "not a url"} {
		res := NewHTTPFetch(nil).Execute(context.Background(), map[string]any{"url": u})
		if res.Status != tool.StatusError {
			t.Fatalf("url %q: status = %s, want error", u, res.Status)
		}
	}
}

func TestHTTPFetch_TruncatesLargeBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(strings.Repeat("b", maxFetchBytes+10))) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	res := NewHTTPFetch(srv.Client()).Execute(context.Background(), map[string]any{"url": srv.URL})
	if res.Status != tool.StatusPartial {
		t.Fatalf("status = %s, want partial", res.Status)
	}
	if got := len(res.Data.(map[string]any)["body"].(string)); got != maxFetchBytes {
		t.Fatalf("body length = %d, want %d", got, maxFetchBytes)
	}
}
