package compliance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func makeRule(name string, mutate func(*Rule)) Rule {
	r := Rule{
		ID:         uuid.New(),
		CourtID:    "district-9",
		Name:       name,
		Source:     "local_rule",
		Category:   "filing",
		Priority:   40,
		Status:     StatusActive,
		Conditions: json.RawMessage(`[]`),
		Actions:    json.RawMessage(`[]`),
		Triggers:   json.RawMessage(`["case_filed"]`),
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func TestSelectRules(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		rule         Rule
		jurisdiction string
		trigger      TriggerEvent
		selected     bool
	}{
		{
			name:         "active global rule with matching trigger",
			rule:         makeRule("global", nil),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     true,
		},
		{
			name:         "superseded rule is skipped",
			rule:         makeRule("old", func(r *Rule) { r.Status = StatusSuperseded }),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     false,
		},
		{
			name:         "repealed rule is skipped",
			rule:         makeRule("gone", func(r *Rule) { r.Status = StatusRepealed }),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     false,
		},
		{
			name: "not yet effective",
			rule: makeRule("future", func(r *Rule) {
				r.EffectiveDate = timePtr(now.Add(24 * time.Hour))
			}),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     false,
		},
		{
			name: "already expired",
			rule: makeRule("expired", func(r *Rule) {
				r.ExpirationDate = timePtr(now.Add(-24 * time.Hour))
			}),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     false,
		},
		{
			name: "inside effective window",
			rule: makeRule("windowed", func(r *Rule) {
				r.EffectiveDate = timePtr(now.Add(-24 * time.Hour))
				r.ExpirationDate = timePtr(now.Add(24 * time.Hour))
			}),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     true,
		},
		{
			name: "jurisdiction matches case-insensitively",
			rule: makeRule("scoped", func(r *Rule) {
				r.Jurisdiction = strPtr("District-9")
			}),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     true,
		},
		{
			name: "other jurisdiction is skipped",
			rule: makeRule("elsewhere", func(r *Rule) {
				r.Jurisdiction = strPtr("district-2")
			}),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     false,
		},
		{
			name:         "trigger not listed",
			rule:         makeRule("wrong trigger", nil),
			jurisdiction: "district-9",
			trigger:      TriggerMotionFiled,
			selected:     false,
		},
		{
			name: "trigger among several",
			rule: makeRule("multi trigger", func(r *Rule) {
				r.Triggers = json.RawMessage(`["case_filed", "motion_filed", "answer_filed"]`)
			}),
			jurisdiction: "district-9",
			trigger:      TriggerMotionFiled,
			selected:     true,
		},
		{
			name: "malformed triggers select nothing",
			rule: makeRule("bad triggers", func(r *Rule) {
				r.Triggers = json.RawMessage(`"case_filed"`)
			}),
			jurisdiction: "district-9",
			trigger:      TriggerCaseFiled,
			selected:     false,
		},
		{
			name: "non-string trigger entries are ignored",
			rule: makeRule("mixed triggers", func(r *Rule) {
				r.Triggers = json.RawMessage(`[42, null, "motion_filed"]`)
			}),
			jurisdiction: "district-9",
			trigger:      TriggerMotionFiled,
			selected:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := selectRulesAt(tt.jurisdiction, tt.trigger, []Rule{tt.rule}, now)

			if tt.selected {
				require.Len(t, got, 1)
				assert.Equal(t, tt.rule.Name, got[0].Name)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestSelectRules_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	rules := []Rule{
		makeRule("first", nil),
		makeRule("skipped", func(r *Rule) { r.Status = StatusRepealed }),
		makeRule("second", nil),
	}

	got := selectRulesAt("district-9", TriggerCaseFiled, rules, now)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
}
