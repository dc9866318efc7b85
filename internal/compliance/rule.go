// Package compliance implements the procedural-rules evaluation engine:
// a stateless, single-pass interpreter that decides which rules apply to a
// case-lifecycle event, in what priority, whether their condition trees match
// the filing context, and what consequences follow. The engine performs no
// I/O and holds no state between calls; callers fetch candidate rules,
// invoke Evaluate, and persist the resulting report themselves.
package compliance

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Rule lifecycle statuses as stored in the rules.status column.
const (
	StatusActive     = "Active"
	StatusSuperseded = "Superseded"
	StatusRepealed   = "Repealed"
)

// Rule is one procedural rule as persisted in the rules table. Conditions,
// Actions and Triggers are kept opaque (raw JSONB) because two wire formats
// are in circulation; see ParseConditions and ParseActions.
// Rules are immutable during an evaluation pass.
type Rule struct {
	ID               uuid.UUID       `json:"id"`
	CourtID          string          `json:"court_id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	Source           string          `json:"source"`
	Category         string          `json:"category"`
	Priority         int             `json:"priority"`
	Status           string          `json:"status"`
	Jurisdiction     *string         `json:"jurisdiction,omitempty"`
	Citation         *string         `json:"citation,omitempty"`
	EffectiveDate    *time.Time      `json:"effective_date,omitempty"`
	ExpirationDate   *time.Time      `json:"expiration_date,omitempty"`
	SupersedesRuleID *uuid.UUID      `json:"supersedes_rule_id,omitempty"`
	Conditions       json.RawMessage `json:"conditions"`
	Actions          json.RawMessage `json:"actions"`
	Triggers         json.RawMessage `json:"triggers"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PriorityClass is the rule-source category used to rank conflicting rules.
// The numeric value doubles as the sort weight: a standing order from the
// presiding judge beats a local rule, which beats an administrative order,
// and so on down to statute.
type PriorityClass int

const (
	PriorityStatutory      PriorityClass = 10
	PriorityFederalRule    PriorityClass = 20
	PriorityAdministrative PriorityClass = 30
	PriorityLocal          PriorityClass = 40
	PriorityStandingOrder  PriorityClass = 50
)

// ClassifyPriority maps the integer priority column onto a class.
// Convention: 10=Statutory, 20=FederalRule, 30=Administrative, 40=Local,
// 50+=StandingOrder; anything below 20 is statutory.
func ClassifyPriority(p int) PriorityClass {
	switch {
	case p >= 50:
		return PriorityStandingOrder
	case p >= 40:
		return PriorityLocal
	case p >= 30:
		return PriorityAdministrative
	case p >= 20:
		return PriorityFederalRule
	default:
		return PriorityStatutory
	}
}

// Weight returns the sort weight; higher evaluates first.
func (c PriorityClass) Weight() int { return int(c) }

// String names the class for logs and audit rows.
func (c PriorityClass) String() string {
	switch c {
	case PriorityStandingOrder:
		return "standing_order"
	case PriorityLocal:
		return "local"
	case PriorityAdministrative:
		return "administrative"
	case PriorityFederalRule:
		return "federal_rule"
	default:
		return "statutory"
	}
}
