package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
	"github.com/iota-uz/bankcrm/modules/crm/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/crm/services"
)

type TargetAPIController struct {
	targets  *services.TargetService
	basePath string
}

func NewTargetAPIController(targets *services.TargetService) *TargetAPIController {
	return &TargetAPIController{
		targets:  targets,
		basePath: "/crm/api/targets",
	}
}

func (c *TargetAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.SetTarget).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/deactivate", c.Deactivate).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/achievements", c.Achievements).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/achievements", c.ApplyAchievement).Methods(http.MethodPost)
}

func targetJSON(t target.Target) map[string]any {
	now := time.Now()
	return map[string]any{
		"id":                     t.ID(),
		"name":                   t.Name(),
		"type":                   string(t.Type()),
		"period":                 string(t.Period()),
		"period_start":           t.PeriodStart(),
		"period_end":             t.PeriodEnd(),
		"target_value":           t.TargetValue(),
		"achieved_value":         t.AchievedValue(),
		"achievement_percentage": t.AchievementPercentage(),
		"on_track":               t.IsOnTrack(now),
		"user_id":                t.UserID(),
		"org_unit_id":            t.OrgUnitID(),
		"active":                 t.IsActive(),
		"created_at":             t.CreatedAt(),
		"updated_at":             t.UpdatedAt(),
	}
}

func achievementJSON(a target.Achievement) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"target_id":   a.TargetID,
		"amount":      a.Amount,
		"source_kind": a.SourceKind,
		"source_id":   a.SourceID,
		"description": a.Description,
		"created_at":  a.CreatedAt,
	}
}

func (c *TargetAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := target.FindParams{
		UserID:     parseQueryUint(r, "user_id"),
		Type:       target.Type(strings.TrimSpace(r.URL.Query().Get("type"))),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      parseQueryInt(r, "limit", 50),
		Offset:     parseQueryInt(r, "offset", 0),
	}
	if r.URL.Query().Get("current") == "true" {
		now := time.Now()
		params.CoversAt = &now
	}

	items, err := c.targets.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, targetJSON(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *TargetAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	item, err := c.targets.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targetJSON(item))
}

func (c *TargetAPIController) SetTarget(w http.ResponseWriter, r *http.Request) {
	var dto dtos.SetTargetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	entity, err := dto.ToEntity()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	created, err := c.targets.SetTarget(r.Context(), entity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, targetJSON(created))
}

func (c *TargetAPIController) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	updated, err := c.targets.Deactivate(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targetJSON(updated))
}

func (c *TargetAPIController) Achievements(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	items, err := c.targets.Achievements(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, achievementJSON(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *TargetAPIController) ApplyAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.ManualAchievementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	updated, err := c.targets.ApplyManualAchievement(r.Context(), id, target.Achievement{
		TargetID:    id,
		Amount:      dto.Amount,
		SourceKind:  "manual",
		Description: dto.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targetJSON(updated))
}
