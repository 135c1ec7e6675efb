package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/modules/crm/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/crm/services"
)

type OpportunityAPIController struct {
	opportunities *services.OpportunityService
	basePath      string
}

func NewOpportunityAPIController(opportunities *services.OpportunityService) *OpportunityAPIController {
	return &OpportunityAPIController{
		opportunities: opportunities,
		basePath:      "/crm/api/opportunities",
	}
}

func (c *OpportunityAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/stage", c.AdvanceStage).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/won", c.MarkWon).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/lost", c.MarkLost).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/reassign", c.Reassign).Methods(http.MethodPost)
}

func opportunityJSON(o opportunity.Opportunity) map[string]any {
	return map[string]any{
		"id":                  o.ID(),
		"name":                o.Name(),
		"customer_id":         o.CustomerID(),
		"product_line":        string(o.ProductLine()),
		"stage":               string(o.Stage()),
		"amount":              o.Amount(),
		"probability":         o.Probability(),
		"expected_revenue":    o.ExpectedRevenue(),
		"actual_revenue":      o.ActualRevenue(),
		"expected_close_date": o.ExpectedCloseDate(),
		"actual_close_date":   o.ActualCloseDate(),
		"owner_id":            o.OwnerID(),
		"org_unit_id":         o.OrgUnitID(),
		"active":              o.IsActive(),
		"won_date":            o.WonDate(),
		"lost_date":           o.LostDate(),
		"lost_reason":         string(o.LostReason()),
		"lost_notes":          o.LostNotes(),
		"competitor_name":     o.CompetitorName(),
		"created_at":          o.CreatedAt(),
		"updated_at":          o.UpdatedAt(),
	}
}

func (c *OpportunityAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := opportunity.FindParams{
		CustomerID:  parseQueryUint(r, "customer_id"),
		Stage:       opportunity.Stage(strings.TrimSpace(r.URL.Query().Get("stage"))),
		ProductLine: opportunity.ProductLine(strings.TrimSpace(r.URL.Query().Get("product_line"))),
		OwnerID:     parseQueryUint(r, "owner_id"),
		ActiveOnly:  r.URL.Query().Get("active") == "true",
		Limit:       parseQueryInt(r, "limit", 50),
		Offset:      parseQueryInt(r, "offset", 0),
	}

	items, err := c.opportunities.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	total, err := c.opportunities.Count(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, opportunityJSON(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *OpportunityAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	item, err := c.opportunities.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityJSON(item))
}

func (c *OpportunityAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateOpportunityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	created, err := c.opportunities.Create(r.Context(), dto.ToEntity())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, opportunityJSON(created))
}

func (c *OpportunityAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.UpdateOpportunityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	existing, err := c.opportunities.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	existing = existing.Rename(dto.Name).SetAmount(dto.Amount).SetExpectedCloseDate(dto.ExpectedCloseDate)
	updated, err := c.opportunities.Update(r.Context(), existing)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityJSON(updated))
}

func (c *OpportunityAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	if err := c.opportunities.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *OpportunityAPIController) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.AdvanceStageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	updated, err := c.opportunities.AdvanceStage(r.Context(), id, opportunity.Stage(dto.Stage))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityJSON(updated))
}

func (c *OpportunityAPIController) MarkWon(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.MarkWonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	won, err := c.opportunities.MarkWon(r.Context(), id, dto.ActualRevenue)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityJSON(won))
}

func (c *OpportunityAPIController) MarkLost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.MarkLostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	lost, err := c.opportunities.MarkLost(r.Context(), id, opportunity.LostReason(dto.Reason), dto.Notes, dto.Competitor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityJSON(lost))
}

func (c *OpportunityAPIController) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.ReassignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	updated, err := c.opportunities.Reassign(r.Context(), id, dto.OwnerID, dto.OrgUnitID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityJSON(updated))
}
