package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/eventbus"
)

// ToolHandler serves the tool catalog, direct execution and usage stats.
type ToolHandler struct {
	registry *tool.Registry
	bus      eventbus.EventBus
	log      *slog.Logger
}

func NewToolHandler(registry *tool.Registry, bus eventbus.EventBus, log *slog.Logger) *ToolHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ToolHandler{registry: registry, bus: bus, log: log}
}

type toolListing struct {
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Schema   tool.FunctionSchema `json:"schema"`
}

type executeToolRequest struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type executeToolResponse struct {
	Status   string         `json:"status"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	names := h.registry.ListTools(category)
	out := make([]toolListing, 0, len(names))
	for _, name := range names {
		t, ok := h.registry.GetTool(name)
		if !ok {
			continue
		}
		cat, _ := h.registry.CategoryOf(name)
		out = append(out, toolListing{Name: name, Category: cat, Schema: t.Schema().Function()})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": out,
		"meta": map[string]any{"total": len(out), "categories": h.registry.Categories()},
	})
}

func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, ok := h.registry.GetTool(name)
	if !ok {
		writeError(w, http.StatusNotFound, "tool not found")
		return
	}
	cat, _ := h.registry.CategoryOf(name)
	writeJSON(w, http.StatusOK, toolListing{Name: name, Category: cat, Schema: t.Schema().Function()})
}

func (h *ToolHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ToolName == "" {
		writeError(w, http.StatusBadRequest, "tool_name is required")
		return
	}
	start := time.Now()
	result := h.registry.Execute(r.Context(), req.ToolName, req.Parameters)
	elapsed := time.Since(start)

	// The registry is the single lookup authority; a pre-check here would
	// race with concurrent Unregister calls.
	if tool.IsNotFound(result) {
		writeError(w, http.StatusNotFound, "tool not found")
		return
	}

	h.log.Info("tool executed over http",
		"tool", req.ToolName,
		"status", string(result.Status),
		"duration", elapsed)

	if h.bus != nil {
		category, _ := h.registry.CategoryOf(req.ToolName)
		h.bus.Publish(audit.TopicInvocation, audit.InvocationEvent{
			ToolName: req.ToolName,
			Category: category,
			Source:   audit.SourceAPI,
			Status:   string(result.Status),
			Params:   req.Parameters,
			Error:    result.Error,
			Duration: elapsed,
		})
	}

	writeJSON(w, http.StatusOK, executeToolResponse{
		Status:   string(result.Status),
		Data:     result.Data,
		Error:    result.Error,
		Metadata: result.Metadata,
	})
}

func (h *ToolHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("tool"); name != "" {
		snap, ok := h.registry.Stats(name)
		if !ok {
			writeError(w, http.StatusNotFound, "tool not found")
			return
		}
		writeJSON(w, http.StatusOK, snap)
		return
	}
	writeJSON(w, http.StatusOK, h.registry.AllStats())
}

func (h *ToolHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("tool"); name != "" {
		if !h.registry.ResetStats(name) {
			writeError(w, http.StatusNotFound, "tool not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "tool": name})
		return
	}
	h.registry.ResetAllStats()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
