package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/logger"
	"github.com/gavelhq/gavel/internal/observability"
	"github.com/gavelhq/gavel/internal/rulestore"
)

// handleCreateRule processes the POST /api/v1/rules request.
//
// Responsibilities:
// 1. Decodes the JSON payload into the CreateRuleRequest DTO.
// 2. Sanitizes and Validates the input using the DTO's business logic.
// 3. Converts the DTO to the domain model (compliance.Rule).
// 4. Persists the rule using the Repository layer.
// 5. Invalidates the court's cached active rule set.
// 6. Returns the created resource with a 201 Created status.
func (a *API) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	var req CreateRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("invalid json payload", slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_JSON",
			Message: "Invalid JSON payload: " + err.Error(),
		})
		return
	}

	// We delegate sanitization and validation to the DTO to keep the
	// handler clean and testable.
	req.Sanitize()
	if errResp := req.Validate(); errResp != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResp)
		return
	}

	rule := &compliance.Rule{
		CourtID:        courtID,
		Name:           req.Name,
		Description:    req.Description,
		Source:         req.Source,
		Category:       req.Category,
		Priority:       req.Priority,
		Status:         req.Status,
		Jurisdiction:   req.Jurisdiction,
		Citation:       req.Citation,
		EffectiveDate:  req.EffectiveDate,
		ExpirationDate: req.ExpirationDate,
		Conditions:     defaultRawJSON(req.Conditions),
		Actions:        defaultRawJSON(req.Actions),
		Triggers:       defaultRawJSON(req.Triggers),
	}

	if err := a.rules.CreateRule(r.Context(), rule); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_CONFLICT",
				Message: "A rule with this name already exists in this court",
			})
			return
		}

		log.Error("failed to create rule in db", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to create rule in database",
		})
		return
	}

	a.invalidateCacheAsync(log, courtID)

	log.Info("rule created successfully",
		slog.String("rule_id", rule.ID.String()),
		slog.String("court_id", courtID),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mapRuleToResponse(rule))
}

// handleListRules processes the GET /api/v1/rules request.
//
// Optional query parameters: category, source, jurisdiction,
// active (true limits to Active rules), page, page_size.
func (a *API) handleListRules(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	page, err := parseOptionalInt(r, "page", 1)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_QUERY_PARAM",
			Message: err.Error(),
		})
		return
	}

	pageSize, err := parseOptionalInt(r, "page_size", 50)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_QUERY_PARAM",
			Message: err.Error(),
		})
		return
	}

	// Silently clamp out-of-bounds values to keep the endpoint stable.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	filter := rulestore.ListFilter{
		Category:     r.URL.Query().Get("category"),
		Source:       r.URL.Query().Get("source"),
		Jurisdiction: r.URL.Query().Get("jurisdiction"),
		ActiveOnly:   r.URL.Query().Get("active") == "true",
	}

	rules, err := a.rules.ListRules(r.Context(), courtID, filter)
	if err != nil {
		log.Error("failed to list rules from db", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to list rules",
		})
		return
	}

	totalItems := int64(len(rules))
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(pageSize)))
	}

	// The repository returns the full ordered set for the court; the page
	// window is applied here.
	start := (page - 1) * pageSize
	if start > len(rules) {
		start = len(rules)
	}
	end := start + pageSize
	if end > len(rules) {
		end = len(rules)
	}

	dtos := make([]Rule, 0, end-start)
	for i := start; i < end; i++ {
		dtos = append(dtos, mapRuleToResponse(&rules[i]))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, PaginatedResponse{
		Data: dtos,
		Pagination: Pagination{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: page,
			PageSize:    pageSize,
		},
	})
}

// handleGetRule processes the GET /api/v1/rules/{id} request.
func (a *API) handleGetRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	id, ok := parseRuleID(w, r)
	if !ok {
		return
	}

	rule, err := a.rules.GetRule(r.Context(), courtID, id)
	if err != nil {
		if errors.Is(err, rulestore.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Rule not found",
			})
			return
		}

		log.Error("failed to get rule from db", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to get rule",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mapRuleToResponse(rule))
}

// handleUpdateRule processes the PATCH /api/v1/rules/{id} request.
// Partial update: omitted fields keep their stored values.
func (a *API) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	id, ok := parseRuleID(w, r)
	if !ok {
		return
	}

	var req UpdateRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("invalid json payload", slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_JSON",
			Message: "Invalid JSON payload: " + err.Error(),
		})
		return
	}

	if errResp := req.Validate(); errResp != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResp)
		return
	}

	// Read-modify-write: fetch the stored rule, overlay the provided
	// fields, and persist the merged result.
	rule, err := a.rules.GetRule(r.Context(), courtID, id)
	if err != nil {
		if errors.Is(err, rulestore.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Rule not found",
			})
			return
		}

		log.Error("failed to get rule for update", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to update rule",
		})
		return
	}

	applyRuleUpdate(rule, &req)

	if err := a.rules.UpdateRule(r.Context(), rule); err != nil {
		if errors.Is(err, rulestore.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Rule not found",
			})
			return
		}

		log.Error("failed to update rule in db", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to update rule",
		})
		return
	}

	a.invalidateCacheAsync(log, courtID)

	log.Info("rule updated successfully",
		slog.String("rule_id", rule.ID.String()),
		slog.String("court_id", courtID),
	)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, mapRuleToResponse(rule))
}

// handleDeleteRule processes the DELETE /api/v1/rules/{id} request.
func (a *API) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	id, ok := parseRuleID(w, r)
	if !ok {
		return
	}

	if err := a.rules.DeleteRule(r.Context(), courtID, id); err != nil {
		if errors.Is(err, rulestore.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Rule not found",
			})
			return
		}

		log.Error("failed to delete rule from db", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to delete rule",
		})
		return
	}

	a.invalidateCacheAsync(log, courtID)

	log.Info("rule deleted successfully",
		slog.String("rule_id", id.String()),
		slog.String("court_id", courtID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// --- Private Helpers ---

// parseRuleID extracts and validates the {id} path parameter. On failure it
// writes the error response and returns ok=false.
func parseRuleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Rule id must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalInt extracts an integer from the query string.
// If the parameter is missing, it returns the defaultValue.
// It only returns an error if the parameter is present but malformed.
func parseOptionalInt(r *http.Request, key string, defaultValue int) (int, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' must be an integer", key)
	}
	return val, nil
}

// defaultRawJSON normalizes an omitted JSONB payload to an empty array so
// the stored column is never NULL.
func defaultRawJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return raw
}

// applyRuleUpdate overlays the PATCH payload onto the stored rule.
func applyRuleUpdate(rule *compliance.Rule, req *UpdateRuleRequest) {
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = req.Description
	}
	if req.Source != nil {
		rule.Source = *req.Source
	}
	if req.Category != nil {
		rule.Category = *req.Category
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Status != nil {
		rule.Status = *req.Status
	}
	if req.Jurisdiction != nil {
		rule.Jurisdiction = req.Jurisdiction
	}
	if req.Citation != nil {
		rule.Citation = req.Citation
	}
	if req.EffectiveDate != nil {
		rule.EffectiveDate = req.EffectiveDate
	}
	if req.ExpirationDate != nil {
		rule.ExpirationDate = req.ExpirationDate
	}
	if req.Conditions != nil {
		rule.Conditions = *req.Conditions
	}
	if req.Actions != nil {
		rule.Actions = *req.Actions
	}
	if req.Triggers != nil {
		rule.Triggers = *req.Triggers
	}
}

// mapRuleToResponse converts the domain entity to the API Response DTO.
func mapRuleToResponse(r *compliance.Rule) Rule {
	return Rule{
		ID:               r.ID,
		CourtID:          r.CourtID,
		Name:             r.Name,
		Description:      r.Description,
		Source:           r.Source,
		Category:         r.Category,
		Priority:         r.Priority,
		Status:           r.Status,
		Jurisdiction:     r.Jurisdiction,
		Citation:         r.Citation,
		EffectiveDate:    r.EffectiveDate,
		ExpirationDate:   r.ExpirationDate,
		SupersedesRuleID: r.SupersedesRuleID,
		Conditions:       defaultRawJSON(r.Conditions),
		Actions:          defaultRawJSON(r.Actions),
		Triggers:         defaultRawJSON(r.Triggers),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// invalidateCacheAsync drops the court's cached active rule set in both
// tiers without blocking the response.
func (a *API) invalidateCacheAsync(log *slog.Logger, courtID string) {
	if a.l1 != nil {
		a.l1.Del(courtID)
	}
	observability.CacheInvalidations.Inc()

	if a.l2 == nil {
		return
	}

	go func(court string) {
		// Context disconnected from the HTTP request.
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		const maxRetries = 3
		baseDelay := 100 * time.Millisecond

		for i := 0; i <= maxRetries; i++ {
			err := a.l2.Invalidate(ctx, court)
			if err == nil {
				return
			}

			if i == maxRetries {
				log.Error("CRITICAL: failed to invalidate rule cache after retries",
					slog.String("court_id", court),
					slog.String("error", err.Error()))
				return
			}

			// Simple exponential backoff
			log.Warn("failed to invalidate rule cache, retrying...",
				slog.String("court_id", court),
				slog.Int("attempt", i+1),
				slog.String("error", err.Error()))

			time.Sleep(baseDelay * time.Duration(1<<i))
		}
	}(courtID)
}
