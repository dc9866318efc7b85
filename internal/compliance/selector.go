package compliance

import (
	"encoding/json"
	"strings"
	"time"
)

// SelectRules filters the candidate set down to rules that apply to this
// jurisdiction and trigger right now: Active status, inside the
// effective/expiration window, jurisdiction matching case-insensitively (a
// rule without a jurisdiction is global), and the trigger present in the
// rule's triggers array. Pure filter; an empty result is not an error.
func SelectRules(jurisdiction string, trigger TriggerEvent, allRules []Rule) []Rule {
	return selectRulesAt(jurisdiction, trigger, allRules, time.Now().UTC())
}

func selectRulesAt(jurisdiction string, trigger TriggerEvent, allRules []Rule, now time.Time) []Rule {
	jurisdictionLower := strings.ToLower(jurisdiction)

	selected := make([]Rule, 0, len(allRules))
	for _, rule := range allRules {
		if rule.Status != StatusActive {
			continue
		}
		if rule.EffectiveDate != nil && now.Before(*rule.EffectiveDate) {
			continue
		}
		if rule.ExpirationDate != nil && now.After(*rule.ExpirationDate) {
			continue
		}
		if rule.Jurisdiction != nil && strings.ToLower(*rule.Jurisdiction) != jurisdictionLower {
			continue
		}
		if !ruleTriggeredBy(rule.Triggers, trigger) {
			continue
		}
		selected = append(selected, rule)
	}
	return selected
}

// ruleTriggeredBy checks the rule's raw triggers array for the event name.
// Exact string match; non-array JSON and non-string entries select nothing.
func ruleTriggeredBy(raw json.RawMessage, trigger TriggerEvent) bool {
	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return false
	}
	for _, entry := range entries {
		if s, ok := entry.(string); ok && s == string(trigger) {
			return true
		}
	}
	return false
}
