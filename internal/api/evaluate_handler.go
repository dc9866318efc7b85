package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/logger"
	"github.com/gavelhq/gavel/internal/observability"
)

// handleEvaluate processes the POST /api/v1/rules/evaluate request.
//
// Pipeline: build the filing context from the request payload, fetch the
// court's active rule set (L1 -> L2 -> PostgreSQL read-through), select the
// rules that apply to this trigger, order them by priority class, and run
// the evaluation engine. The response carries the matched rules, the flat
// action list, and the full compliance report.
func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	courtID := courtFromContext(r.Context())

	var req EvaluateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("invalid json payload", slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_JSON",
			Message: "Invalid JSON payload: " + err.Error(),
		})
		return
	}

	filingCtx, trigger := buildFilingContext(courtID, req.Context)

	allRules, err := a.fetchActiveRules(r.Context(), log, courtID)
	if err != nil {
		log.Error("failed to load active rules", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to load active rules",
		})
		return
	}

	selected := compliance.SelectRules(courtID, trigger, allRules)
	if req.Category != nil && *req.Category != "" {
		filtered := make([]compliance.Rule, 0, len(selected))
		for _, rule := range selected {
			if rule.Category == *req.Category {
				filtered = append(filtered, rule)
			}
		}
		selected = filtered
	}
	prioritized := compliance.ResolvePriority(selected)

	observability.EvaluationRulesSelected.Observe(float64(len(prioritized)))

	start := time.Now()
	report := a.engine.Evaluate(filingCtx, prioritized)
	observability.EvaluationDuration.Observe(time.Since(start).Seconds())

	outcome := "allowed"
	if report.Blocked {
		outcome = "blocked"
	}
	observability.EvaluationsTotal.WithLabelValues(outcome).Inc()

	log.Info("evaluation completed",
		slog.String("court_id", courtID),
		slog.String("trigger", trigger.String()),
		slog.Int("rules_selected", len(prioritized)),
		slog.Bool("blocked", report.Blocked),
	)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, buildEvaluateResponse(prioritized, report))
}

// buildFilingContext lifts the well-known keys out of the free-form context
// object. The whole object rides along as metadata so conditions can resolve
// custom fields by name. Unknown or missing triggers fall back to
// manual_evaluation.
func buildFilingContext(courtID string, raw map[string]any) (*compliance.FilingContext, compliance.TriggerEvent) {
	fc := &compliance.FilingContext{
		CaseType:       stringKey(raw, "case_type"),
		DocumentType:   stringKey(raw, "document_type"),
		FilerRole:      "attorney",
		JurisdictionID: courtID,
		Metadata:       raw,
	}

	if role := stringKey(raw, "filer_role"); role != "" {
		fc.FilerRole = role
	}
	if division := stringKey(raw, "division"); division != "" {
		fc.Division = &division
	}
	if judge := stringKey(raw, "assigned_judge"); judge != "" {
		fc.AssignedJudge = &judge
	}
	if svc := stringKey(raw, "service_method"); svc != "" {
		method := compliance.ServiceMethod(svc)
		fc.ServiceMethod = &method
	}

	trigger := compliance.TriggerManualEvaluation
	if s := stringKey(raw, "trigger"); s != "" {
		if parsed, ok := compliance.ParseTrigger(s); ok {
			trigger = parsed
		}
	}

	return fc, trigger
}

func stringKey(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// fetchActiveRules is the read-through path for a court's active rule set:
// in-process L1 first, then Redis, then PostgreSQL, populating the faster
// tiers on the way back. Cache write failures degrade to the next read
// paying full price; they never fail the evaluation.
func (a *API) fetchActiveRules(ctx context.Context, log *slog.Logger, courtID string) ([]compliance.Rule, error) {
	if a.l1 != nil {
		if rules, ok := a.l1.Get(courtID); ok {
			return rules, nil
		}
	}

	if a.l2 != nil {
		rules, err := a.l2.GetActiveRules(ctx, courtID)
		switch {
		case err == nil:
			if a.l1 != nil {
				a.l1.Set(courtID, rules)
			}
			return rules, nil
		case !errors.Is(err, cache.ErrMiss):
			// Redis trouble is not fatal; fall through to the database.
			log.Warn("l2 cache read failed, falling back to database",
				slog.String("court_id", courtID),
				slog.String("error", err.Error()))
		}
	}

	rules, err := a.rules.ListActiveRules(ctx, courtID)
	if err != nil {
		return nil, err
	}

	if a.l1 != nil {
		a.l1.Set(courtID, rules)
	}
	if a.l2 != nil {
		if err := a.l2.SetActiveRules(ctx, courtID, rules); err != nil {
			log.Warn("failed to populate l2 cache",
				slog.String("court_id", courtID),
				slog.String("error", err.Error()))
		}
	}
	return rules, nil
}

// buildEvaluateResponse assembles the wire response: rules with at least one
// matched result (in priority order), the flattened matched-action list, and
// the full report.
func buildEvaluateResponse(prioritized []compliance.Rule, report compliance.ComplianceReport) EvaluateResponse {
	matchedIDs := make(map[string]bool, len(report.Results))
	actions := make([]ActionResult, 0, len(report.Results))
	for _, result := range report.Results {
		if !result.Matched {
			continue
		}
		matchedIDs[result.RuleID.String()] = true
		actions = append(actions, ActionResult{
			RuleID:  result.RuleID.String(),
			Action:  result.ActionTaken,
			Message: result.Message,
		})
	}

	matched := make([]Rule, 0, len(matchedIDs))
	for i := range prioritized {
		if matchedIDs[prioritized[i].ID.String()] {
			matched = append(matched, mapRuleToResponse(&prioritized[i]))
		}
	}

	return EvaluateResponse{
		MatchedRules: matched,
		Actions:      actions,
		Report:       report,
	}
}
