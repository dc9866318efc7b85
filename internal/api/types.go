// Package api implements the REST API for the Gavel rule service.
// It handles HTTP routing, request decoding, validation, and response formatting.
package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/compliance"
)

// validStatuses are the accepted rule lifecycle states.
var validStatuses = map[string]bool{
	compliance.StatusActive:     true,
	compliance.StatusSuperseded: true,
	compliance.StatusRepealed:   true,
}

// Rule represents the procedural-rule resource as exposed by the API.
// It maps directly to the 'rules' table in PostgreSQL.
type Rule struct {
	// ID is the server-generated surrogate key. Read-only.
	ID uuid.UUID `json:"id"`

	// CourtID scopes the rule to one court district.
	CourtID string `json:"court_id"`

	// Name is the human-readable label for the rule.
	Name string `json:"name"`

	// Description provides optional context about the rule's purpose.
	Description *string `json:"description,omitempty"`

	// Source identifies where the rule comes from (statute, local rule, ...).
	Source string `json:"source"`

	// Category groups rules for filtered evaluation (filing, fees, ...).
	Category string `json:"category"`

	// Priority ranks conflicting rules; higher wins.
	Priority int `json:"priority"`

	// Status is the lifecycle state: Active, Superseded, or Repealed.
	Status string `json:"status"`

	// Jurisdiction optionally narrows the rule to one jurisdiction;
	// nil means the rule applies court-wide.
	Jurisdiction *string `json:"jurisdiction,omitempty"`

	// Citation is the legal citation backing the rule (e.g. "FRCP 4(m)").
	Citation *string `json:"citation,omitempty"`

	EffectiveDate  *time.Time `json:"effective_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	// SupersedesRuleID links to the rule this one replaced.
	SupersedesRuleID *uuid.UUID `json:"supersedes_rule_id,omitempty"`

	// Conditions is the stored condition tree (JSONB passthrough).
	Conditions json.RawMessage `json:"conditions"`

	// Actions is the stored action list (JSONB passthrough).
	Actions json.RawMessage `json:"actions"`

	// Triggers is the list of lifecycle events this rule fires on.
	Triggers json.RawMessage `json:"triggers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// Reusable Validation Logic
// -----------------------------------------------------------------------------

// validateRuleName enforces rules for the human-readable name.
func validateRuleName(name string) *ErrorResponse {
	if name == "" {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Name is required",
		}
	}
	if len(name) > 255 {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Name must be less than 255 characters",
		}
	}
	return nil
}

// validateRequired checks a required free-text field.
func validateRequired(value, field string) *ErrorResponse {
	if value == "" {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: field + " is required",
		}
	}
	return nil
}

// validateRuleJSON verifies that an opaque JSONB payload is at least
// well-formed JSON. Structural problems beyond that degrade fail-open at
// evaluation time, so they are not rejected here.
func validateRuleJSON(raw json.RawMessage, field string) *ErrorResponse {
	if len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: field + " must be valid JSON",
		}
	}
	return nil
}

// CreateRuleRequest defines the payload for creating a new rule.
// Used for JSON decoding in the POST /rules endpoint.
type CreateRuleRequest struct {
	// Name is required.
	Name string `json:"name"`

	// Description is optional.
	Description *string `json:"description,omitempty"`

	// Source is required (e.g. "statute", "local_rule", "standing_order").
	Source string `json:"source"`

	// Category is required (e.g. "filing", "fees", "deadlines").
	Category string `json:"category"`

	// Priority defaults to 0 if omitted.
	Priority int `json:"priority"`

	// Status defaults to Active if omitted.
	Status string `json:"status,omitempty"`

	Jurisdiction   *string    `json:"jurisdiction,omitempty"`
	Citation       *string    `json:"citation,omitempty"`
	EffectiveDate  *time.Time `json:"effective_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	// Conditions and Actions are stored opaquely; both typed and legacy
	// formats are accepted (see the evaluation engine).
	Conditions json.RawMessage `json:"conditions,omitempty"`
	Actions    json.RawMessage `json:"actions,omitempty"`

	// Triggers is the list of lifecycle event names. Defaults to [].
	Triggers json.RawMessage `json:"triggers,omitempty"`
}

// Sanitize cleans up input data by trimming whitespace.
// This prevents "dirty" data from entering the system logic.
func (r *CreateRuleRequest) Sanitize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Source = strings.TrimSpace(r.Source)
	r.Category = strings.TrimSpace(r.Category)
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = compliance.StatusActive
	}
}

// Validate checks if the request data adheres to business rules.
// It returns a structured *ErrorResponse if validation fails, or nil if valid.
func (r *CreateRuleRequest) Validate() *ErrorResponse {
	if err := validateRuleName(r.Name); err != nil {
		return err
	}
	if err := validateRequired(r.Source, "Source"); err != nil {
		return err
	}
	if err := validateRequired(r.Category, "Category"); err != nil {
		return err
	}
	if !validStatuses[r.Status] {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Status must be one of: Active, Superseded, Repealed",
		}
	}
	if r.Priority < 0 {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Priority cannot be negative",
		}
	}
	if err := validateRuleJSON(r.Conditions, "Conditions"); err != nil {
		return err
	}
	if err := validateRuleJSON(r.Actions, "Actions"); err != nil {
		return err
	}
	if err := validateRuleJSON(r.Triggers, "Triggers"); err != nil {
		return err
	}
	return nil
}

// UpdateRuleRequest defines the payload for partial updates (PATCH).
// Pointers are used to distinguish between "missing field" (do nothing)
// and "zero value" (explicit update).
type UpdateRuleRequest struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Source         *string          `json:"source,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Priority       *int             `json:"priority,omitempty"`
	Status         *string          `json:"status,omitempty"`
	Jurisdiction   *string          `json:"jurisdiction,omitempty"`
	Citation       *string          `json:"citation,omitempty"`
	EffectiveDate  *time.Time       `json:"effective_date,omitempty"`
	ExpirationDate *time.Time       `json:"expiration_date,omitempty"`
	Conditions     *json.RawMessage `json:"conditions,omitempty"`
	Actions        *json.RawMessage `json:"actions,omitempty"`
	Triggers       *json.RawMessage `json:"triggers,omitempty"`
}

// Validate checks if the provided fields adhere to business rules.
func (r *UpdateRuleRequest) Validate() *ErrorResponse {
	if r.Name != nil {
		if err := validateRuleName(*r.Name); err != nil {
			return err
		}
	}
	if r.Status != nil && !validStatuses[*r.Status] {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Status must be one of: Active, Superseded, Repealed",
		}
	}
	if r.Priority != nil && *r.Priority < 0 {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Priority cannot be negative",
		}
	}
	if r.Conditions != nil {
		if err := validateRuleJSON(*r.Conditions, "Conditions"); err != nil {
			return err
		}
	}
	if r.Actions != nil {
		if err := validateRuleJSON(*r.Actions, "Actions"); err != nil {
			return err
		}
	}
	if r.Triggers != nil {
		if err := validateRuleJSON(*r.Triggers, "Triggers"); err != nil {
			return err
		}
	}
	return nil
}

// EvaluateRequest defines the payload for POST /rules/evaluate.
type EvaluateRequest struct {
	// Context is the filing context as a free-form JSON object. Well-known
	// keys (case_type, document_type, filer_role, division, assigned_judge,
	// trigger) are lifted into first-class fields; everything rides along
	// as metadata for condition resolution.
	Context map[string]any `json:"context"`

	// Category optionally narrows evaluation to one rule category.
	Category *string `json:"category,omitempty"`
}

// ActionResult is one matched-rule action in the evaluation response.
type ActionResult struct {
	RuleID  string `json:"rule_id"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// EvaluateResponse is the result of a rule evaluation: the rules whose
// conditions matched, the flattened action list, and the full compliance
// report with deadlines, fees, warnings, and block status.
type EvaluateResponse struct {
	MatchedRules []Rule                      `json:"matched_rules"`
	Actions      []ActionResult              `json:"actions"`
	Report       compliance.ComplianceReport `json:"report"`
}

// PaginatedResponse is a standard wrapper for list endpoints to support offset pagination.
type PaginatedResponse struct {
	// Data holds the list of resources (e.g., []Rule).
	Data interface{} `json:"data"`

	// Pagination contains pagination metadata.
	Pagination Pagination `json:"pagination"`
}

// Pagination metadata for the frontend pager.
type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// ErrorResponse represents a standard structured API error.
type ErrorResponse struct {
	// Code is a machine-readable error code (e.g., "ERR_INVALID_INPUT").
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details provides optional granular validation errors.
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail provides context about specific field validation failures.
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}
