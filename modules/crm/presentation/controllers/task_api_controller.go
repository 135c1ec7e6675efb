package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
	"github.com/iota-uz/bankcrm/modules/crm/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/crm/services"
	"github.com/iota-uz/bankcrm/pkg/composables"
)

type TaskAPIController struct {
	tasks    *services.TaskService
	basePath string
}

func NewTaskAPIController(tasks *services.TaskService) *TaskAPIController {
	return &TaskAPIController{
		tasks:    tasks,
		basePath: "/crm/api/tasks",
	}
}

func (c *TaskAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/start", c.Start).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/complete", c.Complete).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/cancel", c.Cancel).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/escalate", c.Escalate).Methods(http.MethodPost)
}

func taskJSON(t task.Task) map[string]any {
	return map[string]any{
		"id":              t.ID(),
		"title":           t.Title(),
		"description":     t.Description(),
		"kind":            string(t.Kind()),
		"status":          string(t.Status()),
		"priority":        string(t.Priority()),
		"customer_id":     t.CustomerID(),
		"opportunity_id":  t.OpportunityID(),
		"assigned_to_id":  t.AssignedToID(),
		"assigned_by_id":  t.AssignedByID(),
		"org_unit_id":     t.OrgUnitID(),
		"due_date":        t.DueDate(),
		"completed_at":    t.CompletedAt(),
		"escalation_tier": t.EscalationTier(),
		"escalated_to_id": t.EscalatedToID(),
		"escalated_at":    t.EscalatedAt(),
		"created_at":      t.CreatedAt(),
		"updated_at":      t.UpdatedAt(),
	}
}

func (c *TaskAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := task.FindParams{
		Status:       task.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		Priority:     task.Priority(strings.TrimSpace(r.URL.Query().Get("priority"))),
		AssignedToID: parseQueryUint(r, "assigned_to_id"),
		CustomerID:   parseQueryUint(r, "customer_id"),
		Limit:        parseQueryInt(r, "limit", 50),
		Offset:       parseQueryInt(r, "offset", 0),
	}

	items, err := c.tasks.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	total, err := c.tasks.Count(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, taskJSON(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *TaskAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	item, err := c.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(item))
}

func (c *TaskAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	subject, err := composables.UseSubject(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	created, err := c.tasks.Create(r.Context(), dto.ToEntity(subject.ID()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskJSON(created))
}

func (c *TaskAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	if err := c.tasks.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *TaskAPIController) Start(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.tasks.Start)
}

func (c *TaskAPIController) Complete(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.tasks.Complete)
}

func (c *TaskAPIController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.tasks.Cancel)
}

func (c *TaskAPIController) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uint) (task.Task, error)) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	updated, err := fn(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(updated))
}

func (c *TaskAPIController) Escalate(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.EscalateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	updated, err := c.tasks.Escalate(r.Context(), id, dto.ToID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(updated))
}
