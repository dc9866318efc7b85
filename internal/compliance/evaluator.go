package compliance

import (
	"strconv"
	"strings"
)

// EvaluateCondition walks a condition tree against a filing context and
// reports whether it holds. Combinators recurse; leaves resolve their field
// through FilingContext.FieldValue. A leaf whose field is absent from the
// context never matches (except field_exists, which is the presence check
// itself).
func EvaluateCondition(condition RuleCondition, ctx *FilingContext) bool {
	switch c := condition.(type) {
	case AndCondition:
		for _, child := range c.Conditions {
			if !EvaluateCondition(child, ctx) {
				return false
			}
		}
		return true
	case OrCondition:
		for _, child := range c.Conditions {
			if EvaluateCondition(child, ctx) {
				return true
			}
		}
		return false
	case NotCondition:
		return !EvaluateCondition(c.Condition, ctx)
	case FieldEqualsCondition:
		v, ok := ctx.FieldValue(c.Field)
		return ok && v == c.Value
	case FieldContainsCondition:
		v, ok := ctx.FieldValue(c.Field)
		return ok && strings.Contains(v, c.Value)
	case FieldExistsCondition:
		return ctx.HasField(c.Field)
	case FieldGreaterThanCondition:
		v, ok := ctx.FieldValue(c.Field)
		return ok && compareOrdered(v, c.Value) > 0
	case FieldLessThanCondition:
		v, ok := ctx.FieldValue(c.Field)
		return ok && compareOrdered(v, c.Value) < 0
	case AlwaysCondition:
		return true
	default:
		return false
	}
}

// compareOrdered compares two rule values: numerically when both sides
// parse as floats, lexicographically otherwise. Rule authors write numbers
// as strings ("75000"), so the numeric path is the common one.
func compareOrdered(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa > fb:
			return 1
		case fa < fb:
			return -1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
