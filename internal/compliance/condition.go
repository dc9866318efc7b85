package compliance

import (
	"encoding/json"
	"fmt"
)

// RuleCondition is one node of a rule's condition tree: either a boolean
// combinator wrapping child conditions or a leaf check against the filing
// context. The set of variants is closed; EvaluateCondition switches over
// all of them.
//
// Wire format is a tagged object, e.g.
//
//	{"type": "field_equals", "field": "case_type", "value": "civil"}
//	{"type": "and", "conditions": [...]}
type RuleCondition interface {
	isRuleCondition()
}

// AndCondition matches when every child matches. An empty child list is
// vacuously true.
type AndCondition struct {
	Conditions []RuleCondition
}

// OrCondition matches when at least one child matches.
type OrCondition struct {
	Conditions []RuleCondition
}

// NotCondition inverts its child.
type NotCondition struct {
	Condition RuleCondition
}

// FieldEqualsCondition matches when the context field equals the value.
type FieldEqualsCondition struct {
	Field string
	Value string
}

// FieldContainsCondition matches when the context field contains the value
// as a substring.
type FieldContainsCondition struct {
	Field string
	Value string
}

// FieldExistsCondition matches when the field is present in the context.
type FieldExistsCondition struct {
	Field string
}

// FieldGreaterThanCondition matches when the context field exceeds the
// value: numerically when both sides parse as numbers, lexicographically
// otherwise.
type FieldGreaterThanCondition struct {
	Field string
	Value string
}

// FieldLessThanCondition is the ordering counterpart of FieldGreaterThan.
type FieldLessThanCondition struct {
	Field string
	Value string
}

// AlwaysCondition matches unconditionally.
type AlwaysCondition struct{}

func (AndCondition) isRuleCondition()              {}
func (OrCondition) isRuleCondition()               {}
func (NotCondition) isRuleCondition()              {}
func (FieldEqualsCondition) isRuleCondition()      {}
func (FieldContainsCondition) isRuleCondition()    {}
func (FieldExistsCondition) isRuleCondition()      {}
func (FieldGreaterThanCondition) isRuleCondition() {}
func (FieldLessThanCondition) isRuleCondition()    {}
func (AlwaysCondition) isRuleCondition()           {}

// conditionEnvelope is the decode target for the tagged wire format.
// Pointers distinguish absent fields from empty ones, so missing required
// fields fail decoding instead of producing half-built conditions.
type conditionEnvelope struct {
	Type       *string           `json:"type"`
	Field      *string           `json:"field"`
	Value      *string           `json:"value"`
	Conditions []json.RawMessage `json:"conditions"`
	Condition  json.RawMessage   `json:"condition"`
}

// DecodeCondition parses a single tagged condition object. Unknown or
// malformed tags return an error so callers can fall back to the legacy
// format; see ParseConditions.
func DecodeCondition(data []byte) (RuleCondition, error) {
	var env conditionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("condition is not a tagged object: %w", err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("condition is missing the type tag")
	}

	switch *env.Type {
	case "and", "or":
		if env.Conditions == nil {
			return nil, fmt.Errorf("%s condition is missing conditions", *env.Type)
		}
		children, err := decodeConditionChildren(env.Conditions)
		if err != nil {
			return nil, err
		}
		if *env.Type == "and" {
			return AndCondition{Conditions: children}, nil
		}
		return OrCondition{Conditions: children}, nil
	case "not":
		if env.Condition == nil {
			return nil, fmt.Errorf("not condition is missing its child")
		}
		child, err := DecodeCondition(env.Condition)
		if err != nil {
			return nil, err
		}
		return NotCondition{Condition: child}, nil
	case "field_equals":
		if env.Field == nil || env.Value == nil {
			return nil, fmt.Errorf("field_equals condition requires field and value")
		}
		return FieldEqualsCondition{Field: *env.Field, Value: *env.Value}, nil
	case "field_contains":
		if env.Field == nil || env.Value == nil {
			return nil, fmt.Errorf("field_contains condition requires field and value")
		}
		return FieldContainsCondition{Field: *env.Field, Value: *env.Value}, nil
	case "field_exists":
		if env.Field == nil {
			return nil, fmt.Errorf("field_exists condition requires field")
		}
		return FieldExistsCondition{Field: *env.Field}, nil
	case "field_greater_than":
		if env.Field == nil || env.Value == nil {
			return nil, fmt.Errorf("field_greater_than condition requires field and value")
		}
		return FieldGreaterThanCondition{Field: *env.Field, Value: *env.Value}, nil
	case "field_less_than":
		if env.Field == nil || env.Value == nil {
			return nil, fmt.Errorf("field_less_than condition requires field and value")
		}
		return FieldLessThanCondition{Field: *env.Field, Value: *env.Value}, nil
	case "always":
		return AlwaysCondition{}, nil
	default:
		return nil, fmt.Errorf("unknown condition type %q", *env.Type)
	}
}

func decodeConditionChildren(raws []json.RawMessage) ([]RuleCondition, error) {
	children := make([]RuleCondition, 0, len(raws))
	for _, raw := range raws {
		child, err := DecodeCondition(raw)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// MarshalJSON implementations emit the tagged wire format, so decoded legacy
// rules can be re-serialized in the typed schema.

func (c AndCondition) MarshalJSON() ([]byte, error) {
	return marshalCombinator("and", c.Conditions)
}

func (c OrCondition) MarshalJSON() ([]byte, error) {
	return marshalCombinator("or", c.Conditions)
}

func (c NotCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string        `json:"type"`
		Condition RuleCondition `json:"condition"`
	}{Type: "not", Condition: c.Condition})
}

func (c FieldEqualsCondition) MarshalJSON() ([]byte, error) {
	return marshalFieldValue("field_equals", c.Field, c.Value)
}

func (c FieldContainsCondition) MarshalJSON() ([]byte, error) {
	return marshalFieldValue("field_contains", c.Field, c.Value)
}

func (c FieldExistsCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Field string `json:"field"`
	}{Type: "field_exists", Field: c.Field})
}

func (c FieldGreaterThanCondition) MarshalJSON() ([]byte, error) {
	return marshalFieldValue("field_greater_than", c.Field, c.Value)
}

func (c FieldLessThanCondition) MarshalJSON() ([]byte, error) {
	return marshalFieldValue("field_less_than", c.Field, c.Value)
}

func (c AlwaysCondition) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"always"}`), nil
}

func marshalCombinator(tag string, children []RuleCondition) ([]byte, error) {
	if children == nil {
		children = []RuleCondition{}
	}
	return json.Marshal(struct {
		Type       string          `json:"type"`
		Conditions []RuleCondition `json:"conditions"`
	}{Type: tag, Conditions: children})
}

func marshalFieldValue(tag, field, value string) ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Field string `json:"field"`
		Value string `json:"value"`
	}{Type: tag, Field: field, Value: value})
}
