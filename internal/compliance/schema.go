package compliance

import (
	"bytes"
	"encoding/json"
	"sort"
)

// The rules table predates the typed condition/action schema, so two wire
// formats coexist in the conditions and actions columns:
//
//   - typed: an array of tagged objects, or a single tagged object
//   - legacy: a flat object, e.g. {"case_type": "civil"} for conditions or
//     {"create_deadline": {"days": 30, "title": "Answer"}} for actions
//
// Both parsers try the typed shapes first and fall back to legacy. Input
// matching none of the shapes yields an empty list: a rule with unreadable
// conditions matches unconditionally and one with unreadable actions is a
// no-op. The legacy path is a permanent compatibility adapter, not
// transitional code — old rule rows are never migrated.

// ParseConditions normalizes a rule's persisted conditions JSON into typed
// conditions. It never fails; see the package notes above on fail-open.
func ParseConditions(raw json.RawMessage) []RuleCondition {
	// Typed array.
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil && isJSONArray(raw) {
		conditions, err := decodeConditionChildren(items)
		if err == nil {
			return conditions
		}
	}

	// Single typed object.
	if condition, err := DecodeCondition(raw); err == nil {
		return []RuleCondition{condition}
	}

	// Legacy flat object: every string-valued key except the reserved
	// "trigger" key becomes a field-equality check. Triggers moved to their
	// own column long ago, so a leftover trigger entry is ignored.
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			if key == "trigger" {
				continue
			}
			if _, ok := obj[key].(string); ok {
				keys = append(keys, key)
			}
		}
		// Map order is random; sort for a reproducible condition list.
		sort.Strings(keys)
		conditions := make([]RuleCondition, 0, len(keys))
		for _, key := range keys {
			conditions = append(conditions, FieldEqualsCondition{
				Field: key,
				Value: obj[key].(string),
			})
		}
		return conditions
	}

	return nil
}

// ParseActions normalizes a rule's persisted actions JSON into typed
// actions, with the same fallback chain as ParseConditions. The only legacy
// action key in circulation is create_deadline.
func ParseActions(raw json.RawMessage) []RuleAction {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil && isJSONArray(raw) {
		actions := make([]RuleAction, 0, len(items))
		ok := true
		for _, item := range items {
			action, err := DecodeAction(item)
			if err != nil {
				ok = false
				break
			}
			actions = append(actions, action)
		}
		if ok {
			return actions
		}
	}

	if action, err := DecodeAction(raw); err == nil {
		return []RuleAction{action}
	}

	var legacy struct {
		CreateDeadline *struct {
			Days  *int64  `json:"days"`
			Title *string `json:"title"`
		} `json:"create_deadline"`
	}
	if err := json.Unmarshal(raw, &legacy); err == nil && legacy.CreateDeadline != nil {
		if legacy.CreateDeadline.Days != nil {
			title := "Deadline"
			if legacy.CreateDeadline.Title != nil {
				title = *legacy.CreateDeadline.Title
			}
			return []RuleAction{GenerateDeadlineAction{
				Description:     title,
				DaysFromTrigger: int(*legacy.CreateDeadline.Days),
			}}
		}
	}

	return nil
}

// isJSONArray reports whether the raw value's first token is an array
// opener. Unmarshal into []json.RawMessage alone is not enough: null also
// decodes into a nil slice without error.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// emptyRuleJSON reports whether raw is one of the shapes that legitimately
// carry no conditions or actions: absent, null, or an empty container.
// Anything else that still parses to an empty list fell through the
// compatibility chain and deserves a diagnostic.
func emptyRuleJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}
