package compliance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ServiceDeadline(t *testing.T) {
	t.Parallel()

	rule := makeRule("FRCP 4(m) Service Deadline", func(r *Rule) {
		r.Priority = 20
		r.Citation = strPtr("FRCP 4(m)")
		r.Conditions = json.RawMessage(`[{"type": "field_equals", "field": "case_type", "value": "civil"}]`)
		r.Actions = json.RawMessage(`[{"type": "generate_deadline", "description": "Serve all defendants", "days_from_trigger": 90}]`)
	})
	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "complaint",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}
	today := NewDate(2026, time.March, 2)

	report := NewEngine(nil).EvaluateAt(ctx, []Rule{rule}, today)

	assert.False(t, report.Blocked)
	require.Len(t, report.Deadlines, 1)
	deadline := report.Deadlines[0]
	assert.Equal(t, NewDate(2026, time.May, 31), deadline.DueDate)
	assert.Equal(t, "Serve all defendants", deadline.Description)
	assert.Equal(t, "FRCP 4(m)", deadline.RuleCitation)
	assert.Contains(t, deadline.ComputationNotes, "90 days")
	assert.False(t, deadline.IsShortPeriod)

	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Matched)
	assert.Equal(t, "generate_deadline", report.Results[0].ActionTaken)
	assert.Contains(t, report.Results[0].Message, "due 2026-05-31")
}

func TestEngine_BlockFiling(t *testing.T) {
	t.Parallel()

	rule := makeRule("Emergency Standing Order 2026-01", func(r *Rule) {
		r.Priority = 50
		r.Conditions = json.RawMessage(`[{"type": "field_equals", "field": "document_type", "value": "complaint"}]`)
		r.Actions = json.RawMessage(`[{"type": "block_filing", "reason": "Complaint filings suspended"}]`)
	})
	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "complaint",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	report := NewEngine(nil).Evaluate(ctx, []Rule{rule})

	assert.True(t, report.Blocked)
	require.Len(t, report.BlockReasons, 1)
	assert.Equal(t, "[Emergency Standing Order 2026-01] Complaint filings suspended", report.BlockReasons[0])
	require.Len(t, report.Results, 1)
	assert.Equal(t, "block_filing", report.Results[0].ActionTaken)
}

func TestEngine_NonMatchingRuleStillAudited(t *testing.T) {
	t.Parallel()

	criminalRule := makeRule("Criminal Arraignment", func(r *Rule) {
		r.Conditions = json.RawMessage(`[{"type": "field_equals", "field": "case_type", "value": "criminal"}]`)
		r.Actions = json.RawMessage(`[{"type": "generate_deadline", "description": "Arraignment", "days_from_trigger": 14}]`)
	})
	civilRule := makeRule("Civil Cover Sheet", func(r *Rule) {
		r.Conditions = json.RawMessage(`[{"type": "field_equals", "field": "case_type", "value": "civil"}]`)
		r.Actions = json.RawMessage(`[{"type": "flag_for_review", "reason": "Cover sheet required"}]`)
	})
	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "complaint",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	report := NewEngine(nil).Evaluate(ctx, []Rule{criminalRule, civilRule})

	require.Len(t, report.Results, 2)

	assert.Equal(t, criminalRule.ID, report.Results[0].RuleID)
	assert.False(t, report.Results[0].Matched)
	assert.Equal(t, "none", report.Results[0].ActionTaken)
	assert.Equal(t, "Conditions not met", report.Results[0].Message)

	assert.Equal(t, civilRule.ID, report.Results[1].RuleID)
	assert.True(t, report.Results[1].Matched)
	assert.Equal(t, "flag_for_review", report.Results[1].ActionTaken)

	assert.Empty(t, report.Deadlines)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "[Civil Cover Sheet] Cover sheet required", report.Warnings[0])
}

func TestEngine_EmptyConditionsAlwaysMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		conditions string
	}{
		{"empty array", `[]`},
		{"null", `null`},
		{"empty object", `{}`},
		{"unparseable degrades to unconditional", `{"malformed": `},
	}

	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "notice",
		FilerRole:      "clerk",
		JurisdictionID: "district-9",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rule := makeRule("unconditional", func(r *Rule) {
				r.Conditions = json.RawMessage(tt.conditions)
				r.Actions = json.RawMessage(`[{"type": "log_compliance", "message": "seen"}]`)
			})

			report := NewEngine(nil).Evaluate(ctx, []Rule{rule})

			require.Len(t, report.Results, 1)
			assert.True(t, report.Results[0].Matched)
			assert.Equal(t, "log_compliance", report.Results[0].ActionTaken)
		})
	}
}

func TestEngine_ShortPeriodFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days  int
		short bool
	}{
		{7, true},
		{14, true},
		{15, false},
		{90, false},
	}

	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "motion",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	for _, tt := range tests {
		rule := makeRule("deadline rule", func(r *Rule) {
			r.Actions = json.RawMessage(
				`[{"type": "generate_deadline", "description": "Respond", "days_from_trigger": ` +
					jsonInt(tt.days) + `}]`)
		})

		report := NewEngine(nil).Evaluate(ctx, []Rule{rule})

		require.Len(t, report.Deadlines, 1)
		assert.Equal(t, tt.short, report.Deadlines[0].IsShortPeriod, "%d days", tt.days)
	}
}

func TestEngine_BlockDoesNotHaltEvaluation(t *testing.T) {
	t.Parallel()

	blocking := makeRule("blocker", func(r *Rule) {
		r.Priority = 50
		r.Actions = json.RawMessage(`[{"type": "block_filing", "reason": "Suspended"}]`)
	})
	fee := makeRule("fee rule", func(r *Rule) {
		r.Priority = 10
		r.Actions = json.RawMessage(`[{"type": "require_fee", "amount_cents": 40500, "description": "Filing fee"}]`)
	})
	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "complaint",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	report := NewEngine(nil).Evaluate(ctx, ResolvePriority([]Rule{fee, blocking}))

	assert.True(t, report.Blocked)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "block_filing", report.Results[0].ActionTaken)
	assert.Equal(t, "require_fee", report.Results[1].ActionTaken)
	require.Len(t, report.Fees, 1)
	assert.Equal(t, uint64(40500), report.Fees[0].AmountCents)
	assert.Equal(t, "Filing fee: $405.00", report.Results[1].Message)
}

func TestEngine_MultipleActionsMultipleResults(t *testing.T) {
	t.Parallel()

	rule := makeRule("sealed filing rule", func(r *Rule) {
		r.Actions = json.RawMessage(`[
			{"type": "require_redaction", "fields": ["ssn", "account_number"]},
			{"type": "send_notification", "recipient": "sealing-clerk", "message": "Sealed filing received"}
		]`)
	})
	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "motion_to_seal",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	report := NewEngine(nil).Evaluate(ctx, []Rule{rule})

	require.Len(t, report.Results, 2)
	assert.Equal(t, "require_redaction", report.Results[0].ActionTaken)
	assert.Equal(t, "Redaction required for: ssn, account_number", report.Results[0].Message)
	assert.Equal(t, "send_notification", report.Results[1].ActionTaken)
	assert.Equal(t, "Notify sealing-clerk: Sealed filing received", report.Results[1].Message)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "[sealed filing rule] Redaction required for: ssn, account_number", report.Warnings[0])
}

func TestEngine_MatchedRuleWithNoActions(t *testing.T) {
	t.Parallel()

	rule := makeRule("no-op rule", func(r *Rule) {
		r.Actions = json.RawMessage(`[]`)
	})
	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "notice",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	report := NewEngine(nil).Evaluate(ctx, []Rule{rule})

	// A matched rule contributes one entry per action; zero actions, zero
	// entries.
	assert.Empty(t, report.Results)
	assert.False(t, report.Blocked)
}

func TestEngine_EmptyRuleSet(t *testing.T) {
	t.Parallel()

	ctx := &FilingContext{
		CaseType:       "civil",
		DocumentType:   "notice",
		FilerRole:      "attorney",
		JurisdictionID: "district-9",
	}

	report := NewEngine(nil).Evaluate(ctx, nil)

	assert.False(t, report.Blocked)
	assert.Empty(t, report.Results)
	assert.Empty(t, report.Deadlines)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.Fees)
	assert.Empty(t, report.BlockReasons)
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
