package compliance

import "sort"

// ResolvePriority orders rules for evaluation: highest priority-class
// weight first. The sort is stable on purpose — rules of equal class keep
// their query order, so the audit trail in ComplianceReport.Results is
// reproducible across calls with the same input set. The input slice is
// not modified.
func ResolvePriority(rules []Rule) []Rule {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		wi := ClassifyPriority(ordered[i].Priority).Weight()
		wj := ClassifyPriority(ordered[j].Priority).Weight()
		return wi > wj
	})
	return ordered
}
