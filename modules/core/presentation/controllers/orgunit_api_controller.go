package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/core/services"
)

type OrgUnitAPIController struct {
	units    *services.OrgUnitService
	basePath string
}

func NewOrgUnitAPIController(units *services.OrgUnitService) *OrgUnitAPIController {
	return &OrgUnitAPIController{
		units:    units,
		basePath: "/core/api/org-units",
	}
}

func (c *OrgUnitAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/descendants", c.Descendants).Methods(http.MethodGet)
}

func orgUnitJSON(u orgunit.OrgUnit) map[string]any {
	return map[string]any{
		"id":        u.ID(),
		"name":      u.Name(),
		"kind":      string(u.Kind()),
		"code":      u.Code(),
		"parent_id": u.ParentID(),
		"active":    u.IsActive(),
	}
}

func (c *OrgUnitAPIController) List(w http.ResponseWriter, r *http.Request) {
	units, err := c.units.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}
	out := make([]map[string]any, 0, len(units))
	for _, u := range units {
		out = append(out, orgUnitJSON(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *OrgUnitAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_ID", "invalid id")
		return
	}
	u, err := c.units.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, orgunit.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CORE_ORG_UNIT_NOT_FOUND", "org unit not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, orgUnitJSON(u))
}

// Descendants returns the subtree rooted at the unit, the unit itself
// included. This is the visibility set a manager at that unit holds.
func (c *OrgUnitAPIController) Descendants(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_ID", "invalid id")
		return
	}
	tree := c.units.Tree()
	root, ok := tree.Get(id)
	if !ok {
		writeAPIError(w, r, http.StatusNotFound, "CORE_ORG_UNIT_NOT_FOUND", "org unit not found")
		return
	}
	out := []map[string]any{orgUnitJSON(root)}
	for _, u := range tree.DescendantsOf(id) {
		out = append(out, orgUnitJSON(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *OrgUnitAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateOrgUnitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CORE_VALIDATION_FAILED", fields)
		return
	}
	created, err := c.units.Create(r.Context(), orgunit.New(dto.Name, orgunit.Kind(dto.Kind), dto.Code, dto.ParentID))
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, orgUnitJSON(created))
}
