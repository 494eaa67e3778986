// Package mcp bridges tools served by a Model Context Protocol server into
// the local registry. Each remote tool is wrapped as a regular tool.Tool, so
// routing, validation, timeouts and stats apply to it exactly as they do to
// builtins.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/version"
)

// Category under which bridged tools are registered.
const Category = "mcp"

const clientName = "toolbridge"

// Bridge owns one client session to an MCP server.
type Bridge struct {
	session *mcpsdk.ClientSession
	log     *slog.Logger
}

// Connect dials the MCP server described by spec and completes the MCP
// handshake. Supported specs:
//
//	stdio://<command args...>  — spawn the server as a subprocess
//	http:// or https://        — streamable HTTP transport
//	<command args...>          — bare command, same as stdio://
func Connect(ctx context.Context, spec string, log *slog.Logger) (*Bridge, error) {
	if log == nil {
		log = slog.Default()
	}
	transport, err := buildTransport(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("mcp: build transport: %w", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    clientName,
		Version: version.Version,
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: connect %q: %w", spec, err)
	}
	return &Bridge{session: session, log: log}, nil
}

// Close terminates the session (and the subprocess for stdio transports).
func (b *Bridge) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

// RegisterTools lists the server's tools and registers each one in reg under
// the "mcp" category. Returns how many tools were registered.
func (b *Bridge) RegisterTools(ctx context.Context, reg *tool.Registry) (int, error) {
	count := 0
	for t, err := range b.session.Tools(ctx, nil) {
		if err != nil {
			return count, fmt.Errorf("mcp: list tools: %w", err)
		}
		if t == nil {
			continue
		}
		reg.Register(&remoteTool{
			session: b.session,
			schema:  schemaFromMCP(t),
		}, Category)
		count++
	}
	b.log.Info("mcp tools registered", "count", count)
	return count, nil
}

// remoteTool adapts one MCP server tool to the local contract. Calls go over
// the session; the registry's timeout applies via ctx.
type remoteTool struct {
	session *mcpsdk.ClientSession
	schema  tool.Schema
}

func (r *remoteTool) Schema() tool.Schema { return r.schema }

// Timeout defers to the registry default; MCP servers do not advertise one.
func (r *remoteTool) Timeout() time.Duration { return 0 }

func (r *remoteTool) Execute(ctx context.Context, params map[string]any) tool.Result {
	if params == nil {
		params = map[string]any{}
	}
	res, err := r.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      r.schema.Name,
		Arguments: params,
	})
	if err != nil {
		return tool.Errorf("mcp call %s: %v", r.schema.Name, err)
	}
	if res == nil {
		return tool.Errorf("mcp call %s returned no result", r.schema.Name)
	}

	text := firstTextContent(res.Content)
	if res.IsError {
		if text == "" {
			text = "remote tool reported an error"
		}
		return tool.Errorf("%s", text)
	}
	if text != "" {
		return tool.Success(text)
	}
	// Non-text content: hand the raw content parts through as data.
	if payload, marshalErr := json.Marshal(res.Content); marshalErr == nil {
		return tool.Success(json.RawMessage(payload))
	}
	return tool.Success(res.Content)
}

func firstTextContent(content []mcpsdk.Content) string {
	for _, part := range content {
		if txt, ok := part.(*mcpsdk.TextContent); ok {
			return txt.Text
		}
	}
	return ""
}

// inputSchema is the subset of JSON Schema the contract can represent.
// MCP advertises input schemas as arbitrary JSON; anything beyond flat typed
// properties passes through undeclared (the registry lets undeclared
// parameters through).
type inputSchema struct {
	Type       string `json:"type"`
	Properties map[string]struct {
		Type        string   `json:"type"`
		Description string   `json:"description"`
		Enum        []string `json:"enum"`
	} `json:"properties"`
	Required []string `json:"required"`
}

func schemaFromMCP(t *mcpsdk.Tool) tool.Schema {
	out := tool.Schema{
		Name:        t.Name,
		Description: t.Description,
		Params:      map[string]tool.Param{},
	}

	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return out
	}
	var in inputSchema
	if err := json.Unmarshal(raw, &in); err != nil {
		return out
	}

	required := make(map[string]bool, len(in.Required))
	for _, name := range in.Required {
		required[name] = true
	}
	for name, prop := range in.Properties {
		pt := prop.Type
		if pt == "integer" {
			pt = string(tool.TypeNumber)
		}
		out.Params[name] = tool.Param{
			Type:        tool.ParamType(pt),
			Description: prop.Description,
			Enum:        prop.Enum,
			Required:    required[name],
		}
	}
	return out
}

func buildTransport(ctx context.Context, spec string) (mcpsdk.Transport, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("transport spec is empty")
	}

	lowered := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lowered, "stdio://"):
		return commandTransport(ctx, spec[len("stdio://"):])
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		return &mcpsdk.StreamableClientTransport{Endpoint: spec}, nil
	default:
		return commandTransport(ctx, spec)
	}
}

func commandTransport(ctx context.Context, cmdSpec string) (mcpsdk.Transport, error) {
	parts := strings.Fields(strings.TrimSpace(cmdSpec))
	if len(parts) == 0 {
		return nil, fmt.Errorf("stdio command is empty")
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...) // #nosec G204
	return &mcpsdk.CommandTransport{Command: cmd}, nil
}
