package compliance

import (
	"fmt"
	"strings"
)

// processActions applies a matched rule's actions to the report. Every
// action appends one audit entry to Results plus its own side effect;
// nothing short-circuits, so all actions of all matched rules land in the
// report before it is returned.
func processActions(rule *Rule, actions []RuleAction, report *ComplianceReport, today Date) {
	for _, action := range actions {
		switch a := action.(type) {
		case BlockFilingAction:
			report.Blocked = true
			report.BlockReasons = append(report.BlockReasons,
				fmt.Sprintf("[%s] %s", rule.Name, a.Reason))
			appendResult(report, rule, "block_filing", a.Reason)

		case FlagForReviewAction:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("[%s] %s", rule.Name, a.Reason))
			appendResult(report, rule, "flag_for_review", a.Reason)

		case GenerateDeadlineAction:
			dueDate := today.AddDays(a.DaysFromTrigger)
			report.Deadlines = append(report.Deadlines, DeadlineResult{
				DueDate:      dueDate,
				Description:  a.Description,
				RuleCitation: ruleCitation(rule),
				ComputationNotes: fmt.Sprintf(
					"Generated by rule '%s': %d days from trigger",
					rule.Name, a.DaysFromTrigger),
				IsShortPeriod: a.DaysFromTrigger <= ShortPeriodThreshold,
			})
			appendResult(report, rule, "generate_deadline",
				fmt.Sprintf("%s (due %s)", a.Description, dueDate))

		case RequireRedactionAction:
			fieldList := strings.Join(a.Fields, ", ")
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("[%s] Redaction required for: %s", rule.Name, fieldList))
			appendResult(report, rule, "require_redaction",
				fmt.Sprintf("Redaction required for: %s", fieldList))

		case SendNotificationAction:
			// Recorded only; the caller dispatches notifications.
			appendResult(report, rule, "send_notification",
				fmt.Sprintf("Notify %s: %s", a.Recipient, a.Message))

		case RequireFeeAction:
			report.Fees = append(report.Fees, FeeRequirement{
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				AmountCents: a.AmountCents,
				Description: a.Description,
			})
			appendResult(report, rule, "require_fee",
				fmt.Sprintf("%s: $%.2f", a.Description, float64(a.AmountCents)/100.0))

		case LogComplianceAction:
			appendResult(report, rule, "log_compliance", a.Message)
		}
	}
}

func appendResult(report *ComplianceReport, rule *Rule, actionTaken, message string) {
	report.Results = append(report.Results, RuleResult{
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Matched:     true,
		ActionTaken: actionTaken,
		Message:     message,
	})
}

func ruleCitation(rule *Rule) string {
	if rule.Citation == nil {
		return ""
	}
	return *rule.Citation
}
