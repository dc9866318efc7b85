package compliance

import "log/slog"

// ShortPeriodThreshold is the FRCP 6(a)(2) boundary: deadlines of 14 or
// fewer days are flagged for expedited handling.
const ShortPeriodThreshold = 14

// Engine evaluates rules against filing contexts. It holds no mutable
// state — only an injected logger — so a single instance is safe for
// concurrent use from any number of goroutines.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an evaluation engine. A nil logger falls back to
// slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Evaluate runs one pass over the (already priority-ordered) rules against
// the context, using today's date for deadline computation.
func (e *Engine) Evaluate(ctx *FilingContext, rules []Rule) ComplianceReport {
	return e.EvaluateAt(ctx, rules, Today())
}

// EvaluateAt is Evaluate with an explicit evaluation date, so callers and
// tests control when "today" is.
//
// For each rule: parse its stored conditions (empty parses match
// unconditionally), require every top-level condition to hold (AND), and on
// match process its actions into the report. A non-matching rule still gets
// a results entry, and a block never stops the loop — the returned report
// is a complete audit of every candidate rule regardless of outcome.
func (e *Engine) EvaluateAt(ctx *FilingContext, rules []Rule, today Date) ComplianceReport {
	report := NewComplianceReport()

	for i := range rules {
		rule := &rules[i]

		conditions := ParseConditions(rule.Conditions)
		if len(conditions) == 0 && !emptyRuleJSON(rule.Conditions) {
			// Fail-open: unreadable conditions degrade to always-match.
			// Surface it so a rule author's typo doesn't go unnoticed.
			e.logger.Warn("rule conditions did not parse in any known format; treating rule as unconditional",
				slog.String("rule_id", rule.ID.String()),
				slog.String("rule_name", rule.Name),
			)
		}

		matched := true
		for _, condition := range conditions {
			if !EvaluateCondition(condition, ctx) {
				matched = false
				break
			}
		}

		if !matched {
			report.Results = append(report.Results, RuleResult{
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				Matched:     false,
				ActionTaken: "none",
				Message:     "Conditions not met",
			})
			continue
		}

		actions := ParseActions(rule.Actions)
		if len(actions) == 0 && !emptyRuleJSON(rule.Actions) {
			e.logger.Warn("rule actions did not parse in any known format; matched rule has no effect",
				slog.String("rule_id", rule.ID.String()),
				slog.String("rule_name", rule.Name),
			)
		}
		processActions(rule, actions, &report, today)
	}

	return report
}
