package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coredtos "github.com/iota-uz/bankcrm/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
	"github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence"
	"github.com/iota-uz/bankcrm/modules/crm/services"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/configuration"
)

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

func ensureRequestID(w http.ResponseWriter, r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-Id"
	}

	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	return requestID
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, coredtos.APIError{
		Code:    code,
		Message: message,
		Meta:    map[string]string{"request_id": ensureRequestID(w, r)},
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, code string, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, coredtos.APIError{
		Code:    code,
		Message: "validation failed",
		Meta:    map[string]string{"request_id": ensureRequestID(w, r)},
		Fields:  fields,
	})
}

// writeDomainError maps service and domain errors onto HTTP statuses. Every
// handler funnels its non-validation failures through here.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, composables.ErrNoSubject):
		writeAPIError(w, r, http.StatusUnauthorized, "CRM_UNAUTHENTICATED", "authentication required")
	case errors.Is(err, services.ErrForbidden):
		writeAPIError(w, r, http.StatusForbidden, "CRM_FORBIDDEN", "permission denied")
	case errors.Is(err, customer.ErrNotFound),
		errors.Is(err, opportunity.ErrNotFound),
		errors.Is(err, task.ErrNotFound),
		errors.Is(err, target.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "CRM_NOT_FOUND", "record not found")
	case errors.Is(err, persistence.ErrConcurrentModification):
		writeAPIError(w, r, http.StatusConflict, "CRM_CONCURRENT_MODIFICATION", "record was modified concurrently")
	case errors.Is(err, customer.ErrInvalidTransition),
		errors.Is(err, opportunity.ErrInvalidTransition),
		errors.Is(err, task.ErrInvalidTransition):
		writeAPIError(w, r, http.StatusConflict, "CRM_INVALID_TRANSITION", err.Error())
	case errors.Is(err, opportunity.ErrLostReasonRequired):
		writeAPIError(w, r, http.StatusBadRequest, "CRM_LOST_REASON_REQUIRED", "lost reason is required")
	case errors.Is(err, target.ErrInvalidPeriod):
		writeAPIError(w, r, http.StatusBadRequest, "CRM_INVALID_PERIOD", "period end precedes start")
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("unhandled service error")
		writeAPIError(w, r, http.StatusInternalServerError, "CRM_INTERNAL", "internal error")
	}
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

func parseQueryUint(r *http.Request, name string) uint {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}
