package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/audit/domain/entities/auditlog"
	"github.com/iota-uz/bankcrm/modules/audit/services"
	coredtos "github.com/iota-uz/bankcrm/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/pkg/configuration"
)

// AuditAPIController exposes the append-only audit trail for review. The
// trail itself is written by the services; this surface is read-only.
type AuditAPIController struct {
	audit    *services.AuditService
	basePath string
}

func NewAuditAPIController(audit *services.AuditService) *AuditAPIController {
	return &AuditAPIController{
		audit:    audit,
		basePath: "/audit/api/entries",
	}
}

func (c *AuditAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
}

func entryJSON(e auditlog.Entry) map[string]any {
	return map[string]any{
		"id":           e.ID,
		"actor_id":     e.ActorID,
		"actor_name":   e.ActorName,
		"action":       e.Action,
		"entity_kind":  e.EntityKind,
		"entity_id":    e.EntityID,
		"success":      e.Success,
		"error":        e.Error,
		"details":      e.Details,
		"ip":           e.IP,
		"user_agent":   e.UserAgent,
		"request_path": e.RequestPath,
		"created_at":   e.CreatedAt,
	}
}

func (c *AuditAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := auditlog.FindParams{
		Action:     strings.TrimSpace(r.URL.Query().Get("action")),
		EntityKind: strings.TrimSpace(r.URL.Query().Get("entity_kind")),
		Limit:      50,
	}
	if v := r.URL.Query().Get("actor_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			params.ActorID = uint(id)
		}
	}
	if v := r.URL.Query().Get("entity_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			params.EntityID = uint(id)
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			params.Limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	if v := r.URL.Query().Get("after"); v != "" {
		if at, err := time.Parse(time.RFC3339, v); err == nil {
			params.After = &at
		}
	}
	if v := r.URL.Query().Get("before"); v != "" {
		if at, err := time.Parse(time.RFC3339, v); err == nil {
			params.Before = &at
		}
	}

	items, err := c.audit.List(r.Context(), params)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "AUDIT_INTERNAL", "internal error")
		return
	}
	total, err := c.audit.Count(r.Context(), params)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "AUDIT_INTERNAL", "internal error")
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, e := range items {
		out = append(out, entryJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-Id"
	}
	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	writeJSON(w, status, coredtos.APIError{
		Code:    code,
		Message: message,
		Meta:    map[string]string{"request_id": requestID},
	})
}
