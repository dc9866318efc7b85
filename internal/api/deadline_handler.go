package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/deadline"
	"github.com/gavelhq/gavel/internal/logger"
)

// validServiceMethods are the accepted FRCP 6(d) service methods.
var validServiceMethods = map[compliance.ServiceMethod]bool{
	compliance.ServiceElectronic:       true,
	compliance.ServicePersonalDelivery: true,
	compliance.ServiceMail:             true,
	compliance.ServiceLeavingWithClerk: true,
	compliance.ServiceOther:            true,
}

// ComputeDeadlineRequest defines the payload for POST /deadlines/compute.
type ComputeDeadlineRequest struct {
	// TriggerDate is the date of the event starting the period. Required.
	TriggerDate compliance.Date `json:"trigger_date"`

	// PeriodDays is the base period in calendar days.
	PeriodDays int `json:"period_days"`

	// ServiceMethod optionally applies the FRCP 6(d) adjustment.
	// Defaults to electronic (no adjustment).
	ServiceMethod compliance.ServiceMethod `json:"service_method,omitempty"`

	Description  string `json:"description,omitempty"`
	RuleCitation string `json:"rule_citation,omitempty"`
}

// Validate checks the request against business rules.
func (r *ComputeDeadlineRequest) Validate() *ErrorResponse {
	if r.TriggerDate.Time().IsZero() {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "trigger_date is required (YYYY-MM-DD)",
		}
	}
	if r.PeriodDays < 0 {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "period_days cannot be negative",
		}
	}
	if r.ServiceMethod != "" && !validServiceMethods[r.ServiceMethod] {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "service_method must be one of: electronic, personal_delivery, mail, leaving_with_clerk, other",
		}
	}
	return nil
}

// handleComputeDeadline processes the POST /api/v1/deadlines/compute request.
// It runs the FRCP 6(a)/6(d) computation and returns the due date with its
// audit trail of computation notes.
func (a *API) handleComputeDeadline(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	var req ComputeDeadlineRequest
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

	method := req.ServiceMethod
	if method == "" {
		method = compliance.ServiceElectronic
	}

	result, err := deadline.Compute(deadline.Request{
		TriggerDate:   req.TriggerDate,
		PeriodDays:    req.PeriodDays,
		ServiceMethod: method,
		Jurisdiction:  courtID,
		Description:   req.Description,
		RuleCitation:  req.RuleCitation,
	})
	if err != nil {
		if errors.Is(err, deadline.ErrNegativePeriod) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_INVALID_INPUT",
				Message: err.Error(),
			})
			return
		}

		log.Error("deadline computation failed", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to compute deadline",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
