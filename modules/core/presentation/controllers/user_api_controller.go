package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/core/services"
)

type UserAPIController struct {
	users    *services.UserService
	basePath string
}

func NewUserAPIController(users *services.UserService) *UserAPIController {
	return &UserAPIController{
		users:    users,
		basePath: "/core/api/users",
	}
}

func (c *UserAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
}

func userJSON(u user.User) map[string]any {
	return map[string]any{
		"id":           u.ID(),
		"email":        u.Email(),
		"username":     u.Username(),
		"first_name":   u.FirstName(),
		"last_name":    u.LastName(),
		"phone":        u.Phone(),
		"access_level": u.AccessLevel().String(),
		"role":         string(u.Role()),
		"org_unit_id":  u.OrgUnitID(),
		"active":       u.IsActive(),
		"last_login":   u.LastLogin(),
		"created_at":   u.CreatedAt(),
		"updated_at":   u.UpdatedAt(),
	}
}

func (c *UserAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := user.FindParams{
		Limit:  parseQueryInt(r, "limit", 50),
		Offset: parseQueryInt(r, "offset", 0),
	}
	if v := strings.TrimSpace(r.URL.Query().Get("role")); v != "" {
		role, err := user.NewRole(v)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_ROLE", "unknown role")
			return
		}
		params.Role = role
	}
	if v := strings.TrimSpace(r.URL.Query().Get("org_unit_id")); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_ORG_UNIT", "invalid org unit id")
			return
		}
		params.OrgUnitIDs = []uint{uint(id)}
	}

	items, err := c.users.GetPaginated(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}
	total, err := c.users.Count(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, u := range items {
		out = append(out, userJSON(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *UserAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_ID", "invalid id")
		return
	}
	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CORE_USER_NOT_FOUND", "user not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, userJSON(u))
}

func (c *UserAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_JSON", "invalid json")
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		writeValidationError(w, r, "CORE_VALIDATION_FAILED", fields)
		return
	}
	entity, err := dto.ToEntity()
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CORE_INVALID_USER", err.Error())
		return
	}
	created, err := c.users.Create(r.Context(), entity, dto.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeAPIError(w, r, http.StatusConflict, "CORE_EMAIL_CONFLICT", "email already in use")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CORE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, userJSON(created))
}

func parsePathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func parseQueryInt(r *http.Request, name string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
