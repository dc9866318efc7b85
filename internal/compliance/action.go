package compliance

import (
	"encoding/json"
	"fmt"
)

// RuleAction is one consequence a matched rule produces. Like conditions,
// actions are a closed tagged union; processActions switches over every
// variant. A rule carries zero or more actions and all of them are applied
// independently when the rule matches.
type RuleAction interface {
	isRuleAction()
}

// GenerateDeadlineAction records a deadline due a number of calendar days
// after the triggering event.
type GenerateDeadlineAction struct {
	Description     string
	DaysFromTrigger int
}

// RequireRedactionAction flags fields that must be redacted before the
// document becomes public.
type RequireRedactionAction struct {
	Fields []string
}

// SendNotificationAction asks the caller to notify someone. The engine only
// records it; delivery is the caller's responsibility.
type SendNotificationAction struct {
	Recipient string
	Message   string
}

// BlockFilingAction rejects the triggering operation.
type BlockFilingAction struct {
	Reason string
}

// RequireFeeAction attaches a fee requirement to the filing.
type RequireFeeAction struct {
	AmountCents uint64
	Description string
}

// FlagForReviewAction surfaces a warning for clerk review.
type FlagForReviewAction struct {
	Reason string
}

// LogComplianceAction records an audit message with no other effect.
type LogComplianceAction struct {
	Message string
}

func (GenerateDeadlineAction) isRuleAction() {}
func (RequireRedactionAction) isRuleAction() {}
func (SendNotificationAction) isRuleAction() {}
func (BlockFilingAction) isRuleAction()      {}
func (RequireFeeAction) isRuleAction()       {}
func (FlagForReviewAction) isRuleAction()    {}
func (LogComplianceAction) isRuleAction()    {}

type actionEnvelope struct {
	Type            *string   `json:"type"`
	Description     *string   `json:"description"`
	DaysFromTrigger *int      `json:"days_from_trigger"`
	Fields          []string  `json:"fields"`
	Recipient       *string   `json:"recipient"`
	Message         *string   `json:"message"`
	Reason          *string   `json:"reason"`
	AmountCents     *uint64   `json:"amount_cents"`
}

// DecodeAction parses a single tagged action object. Unknown or malformed
// tags return an error so ParseActions can fall back to the legacy format.
func DecodeAction(data []byte) (RuleAction, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("action is not a tagged object: %w", err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("action is missing the type tag")
	}

	switch *env.Type {
	case "generate_deadline":
		if env.Description == nil || env.DaysFromTrigger == nil {
			return nil, fmt.Errorf("generate_deadline action requires description and days_from_trigger")
		}
		return GenerateDeadlineAction{
			Description:     *env.Description,
			DaysFromTrigger: *env.DaysFromTrigger,
		}, nil
	case "require_redaction":
		if env.Fields == nil {
			return nil, fmt.Errorf("require_redaction action requires fields")
		}
		return RequireRedactionAction{Fields: env.Fields}, nil
	case "send_notification":
		if env.Recipient == nil || env.Message == nil {
			return nil, fmt.Errorf("send_notification action requires recipient and message")
		}
		return SendNotificationAction{Recipient: *env.Recipient, Message: *env.Message}, nil
	case "block_filing":
		if env.Reason == nil {
			return nil, fmt.Errorf("block_filing action requires reason")
		}
		return BlockFilingAction{Reason: *env.Reason}, nil
	case "require_fee":
		if env.AmountCents == nil || env.Description == nil {
			return nil, fmt.Errorf("require_fee action requires amount_cents and description")
		}
		return RequireFeeAction{AmountCents: *env.AmountCents, Description: *env.Description}, nil
	case "flag_for_review":
		if env.Reason == nil {
			return nil, fmt.Errorf("flag_for_review action requires reason")
		}
		return FlagForReviewAction{Reason: *env.Reason}, nil
	case "log_compliance":
		if env.Message == nil {
			return nil, fmt.Errorf("log_compliance action requires message")
		}
		return LogComplianceAction{Message: *env.Message}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", *env.Type)
	}
}

func (a GenerateDeadlineAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type            string `json:"type"`
		Description     string `json:"description"`
		DaysFromTrigger int    `json:"days_from_trigger"`
	}{Type: "generate_deadline", Description: a.Description, DaysFromTrigger: a.DaysFromTrigger})
}

func (a RequireRedactionAction) MarshalJSON() ([]byte, error) {
	fields := a.Fields
	if fields == nil {
		fields = []string{}
	}
	return json.Marshal(struct {
		Type   string   `json:"type"`
		Fields []string `json:"fields"`
	}{Type: "require_redaction", Fields: fields})
}

func (a SendNotificationAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Recipient string `json:"recipient"`
		Message   string `json:"message"`
	}{Type: "send_notification", Recipient: a.Recipient, Message: a.Message})
}

func (a BlockFilingAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}{Type: "block_filing", Reason: a.Reason})
}

func (a RequireFeeAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string `json:"type"`
		AmountCents uint64 `json:"amount_cents"`
		Description string `json:"description"`
	}{Type: "require_fee", AmountCents: a.AmountCents, Description: a.Description})
}

func (a FlagForReviewAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}{Type: "flag_for_review", Reason: a.Reason})
}

func (a LogComplianceAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "log_compliance", Message: a.Message})
}
