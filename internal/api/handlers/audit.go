package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
)

// AuditHandler serves the persisted invocation audit trail.
type AuditHandler struct {
	service *audit.Service
}

func NewAuditHandler(service *audit.Service) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) ListInvocations(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusServiceUnavailable, "audit storage not configured")
		return
	}

	page := parsePaginationParams(r)
	filter := audit.ListFilter{
		ToolName: r.URL.Query().Get("tool"),
		Status:   r.URL.Query().Get("status"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}

	records, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list invocations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": records,
		"meta": map[string]int{"total": total, "limit": page.Limit, "offset": page.Offset},
	})
}
