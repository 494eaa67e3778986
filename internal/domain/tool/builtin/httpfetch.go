package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

const maxFetchBytes = 64 * 1024

// HTTPFetch performs a bounded GET against an http(s) URL and returns the
// leading portion of the body.
type HTTPFetch struct {
	client *http.Client
}

func NewHTTPFetch(client *http.Client) *HTTPFetch {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetch{client: client}
}

func (t *HTTPFetch) Schema() tool.Schema {
	return tool.Schema{
		Name:        "http_fetch",
		Description: "Fetch an http(s) URL and return the response body (truncated)",
		Params: map[string]tool.Param{
			"url": {Type: tool.TypeString, Description: "Absolute http or https URL", Required: true},
		},
	}
}

func (t *HTTPFetch) Timeout() time.Duration { return 15 * time.Second }

type httpFetchRequest struct {
	URL string `json:"url"`
}

func (t *HTTPFetch) Execute(ctx context.Context, params map[string]any) tool.Result {
	var req httpFetchRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid http_fetch params: %v", err)
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return tool.Errorf("http_fetch: url must be absolute http(s), got %q", req.URL)
	}
	if !hostAllowed(parsed.Hostname()) {
		return tool.Errorf("http_fetch: host %q is not allowed", parsed.Hostname())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return tool.Errorf("http_fetch: build request: %v", err)
	}
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return tool.Errorf("http_fetch: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return tool.Errorf("http_fetch: read body: %v", err)
	}

	truncated := len(body) > maxFetchBytes
	if truncated {
		body = body[:maxFetchBytes]
	}
	data := map[string]any{
		"url":         req.URL,
		"status":      resp.StatusCode,
		"contentType": resp.Header.Get("Content-Type"),
		"body":        string(body),
	}
	if resp.StatusCode >= 400 {
		return tool.Partial(data, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}
	if truncated {
		return tool.Partial(data, fmt.Sprintf("body truncated to %d bytes", maxFetchBytes))
	}
	return tool.Success(data)
}

// hostAllowed is kept separate so a future allowlist can hook in without
// touching Execute.
func hostAllowed(host string) bool {
	return !strings.EqualFold(host, "metadata.google.internal")
}
