package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/crm/services"
)

type CustomerAPIController struct {
	customers *services.CustomerService
	basePath  string
}

func NewCustomerAPIController(customers *services.CustomerService) *CustomerAPIController {
	return &CustomerAPIController{
		customers: customers,
		basePath:  "/crm/api/customers",
	}
}

func (c *CustomerAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/stage", c.AdvanceStage).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/requalify", c.Requalify).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/contact", c.RecordContact).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/reassign", c.Reassign).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/sensitive", c.ViewSensitive).Methods(http.MethodGet)
}

func customerJSON(c customer.Customer) map[string]any {
	return map[string]any{
		"id":                  c.ID(),
		"first_name":          c.FirstName(),
		"last_name":           c.LastName(),
		"company_name":        c.CompanyName(),
		"full_name":           c.FullName(),
		"email":               c.Email(),
		"phone":               c.Phone(),
		"mobile":              c.Mobile(),
		"stage":               string(c.Stage()),
		"segment":             string(c.Segment()),
		"qualification_score": c.QualificationScore(),
		"estimated_assets":    c.EstimatedAssets(),
		"credit_score":        c.CreditScore(),
		"high_net_worth":      c.IsHighNetWorth(),
		"owner_id":            c.OwnerID(),
		"org_unit_id":         c.OrgUnitID(),
		"source":              c.Source(),
		"last_contact_date":   c.LastContactDate(),
		"active":              c.IsActive(),
		"do_not_contact":      c.DoNotContact(),
		"kyc_status":          c.KYCStatus(),
		"created_at":          c.CreatedAt(),
		"updated_at":          c.UpdatedAt(),
	}
}

func (c *CustomerAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := customer.FindParams{
		Stage:   customer.Stage(strings.TrimSpace(r.URL.Query().Get("stage"))),
		Segment: customer.Segment(strings.TrimSpace(r.URL.Query().Get("segment"))),
		OwnerID: parseQueryUint(r, "owner_id"),
		Limit:   parseQueryInt(r, "limit", 50),
		Offset:  parseQueryInt(r, "offset", 0),
	}

	items, err := c.customers.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	total, err := c.customers.Count(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, customerJSON(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *CustomerAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	item, err := c.customers.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(item))
}

func (c *CustomerAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateCustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	created, err := c.customers.Create(r.Context(), dto.ToEntity(time.Now()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerJSON(created))
}

func (c *CustomerAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	var dto dtos.UpdateCustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CRM_VALIDATION_FAILED", fields)
		return
	}
	existing, err := c.customers.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	updated, err := c.customers.Update(r.Context(), dto.Apply(existing))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(updated))
}

func (c *CustomerAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	if err := c.customers.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *CustomerAPIController) AdvanceStage(w http.ResponseWriter, r *http.Request) {
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
	updated, err := c.customers.AdvanceStage(r.Context(), id, customer.Stage(dto.Stage))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(updated))
}

func (c *CustomerAPIController) Requalify(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	updated, err := c.customers.Requalify(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(updated))
}

func (c *CustomerAPIController) RecordContact(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	updated, err := c.customers.RecordContact(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(updated))
}

func (c *CustomerAPIController) Reassign(w http.ResponseWriter, r *http.Request) {
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
	updated, err := c.customers.Reassign(r.Context(), id, dto.OwnerID, dto.OrgUnitID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(updated))
}

// ViewSensitive returns the customer together with the account number,
// masked or plain depending on the caller's access level.
func (c *CustomerAPIController) ViewSensitive(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_ID", "invalid id")
		return
	}
	item, accountNumber, err := c.customers.ViewSensitive(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	payload := customerJSON(item)
	payload["account_number"] = accountNumber
	writeJSON(w, http.StatusOK, payload)
}
