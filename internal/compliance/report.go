package compliance

import "github.com/google/uuid"

// RuleResult is the audit record for one candidate rule. Every rule handed
// to Evaluate produces at least one entry, matched or not, so the results
// list is a complete trace of the evaluation pass.
type RuleResult struct {
	RuleID      uuid.UUID `json:"rule_id"`
	RuleName    string    `json:"rule_name"`
	Matched     bool      `json:"matched"`
	ActionTaken string    `json:"action_taken"`
	Message     string    `json:"message"`
}

// DeadlineResult is a deadline generated by a matched rule.
type DeadlineResult struct {
	DueDate          Date   `json:"due_date"`
	Description      string `json:"description"`
	RuleCitation     string `json:"rule_citation"`
	ComputationNotes string `json:"computation_notes"`
	IsShortPeriod    bool   `json:"is_short_period"`
}

// FeeRequirement is a fee a matched rule attached to the filing.
type FeeRequirement struct {
	RuleID      uuid.UUID `json:"rule_id"`
	RuleName    string    `json:"rule_name"`
	AmountCents uint64    `json:"amount_cents"`
	Description string    `json:"description"`
}

// ComplianceReport is the complete output of one evaluation pass. It is
// built fresh per call and owned by the caller afterwards; the engine keeps
// no reference to it. Blocked is a monotonic OR across all matched rules.
type ComplianceReport struct {
	Results      []RuleResult     `json:"results"`
	Blocked      bool             `json:"blocked"`
	BlockReasons []string         `json:"block_reasons"`
	Warnings     []string         `json:"warnings"`
	Deadlines    []DeadlineResult `json:"deadlines"`
	Fees         []FeeRequirement `json:"fees"`
}

// NewComplianceReport returns an empty report with non-nil slices, so it
// serializes as [] rather than null for consumers.
func NewComplianceReport() ComplianceReport {
	return ComplianceReport{
		Results:      []RuleResult{},
		BlockReasons: []string{},
		Warnings:     []string{},
		Deadlines:    []DeadlineResult{},
		Fees:         []FeeRequirement{},
	}
}
