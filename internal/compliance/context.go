package compliance

import (
	"encoding/json"
	"strconv"
)

// ServiceMethod is how a document was served, for deadline computation.
// Per FRCP 6(d), service by mail, leaving with the clerk, or other consented
// means adds 3 days to the response period.
type ServiceMethod string

const (
	ServiceElectronic       ServiceMethod = "electronic"
	ServicePersonalDelivery ServiceMethod = "personal_delivery"
	ServiceMail             ServiceMethod = "mail"
	ServiceLeavingWithClerk ServiceMethod = "leaving_with_clerk"
	ServiceOther            ServiceMethod = "other"
)

// AdditionalDays returns the FRCP 6(d) adjustment for the method.
func (m ServiceMethod) AdditionalDays() int {
	switch m {
	case ServiceMail, ServiceLeavingWithClerk, ServiceOther:
		return 3
	default:
		return 0
	}
}

// FilingContext is the caller-supplied snapshot of the triggering event that
// conditions are evaluated against. The engine never mutates or enriches it.
// Well-known attributes are first-class fields; everything else rides in
// Metadata and is resolved by name.
type FilingContext struct {
	CaseType       string         `json:"case_type"`
	DocumentType   string         `json:"document_type"`
	FilerRole      string         `json:"filer_role"`
	JurisdictionID string         `json:"jurisdiction_id"`
	Division       *string        `json:"division,omitempty"`
	AssignedJudge  *string        `json:"assigned_judge,omitempty"`
	ServiceMethod  *ServiceMethod `json:"service_method,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// FieldValue resolves a condition field name to its string value. Struct
// fields are checked first, then Metadata; non-string metadata values are
// stringified so rules can compare against them.
func (c *FilingContext) FieldValue(field string) (string, bool) {
	switch field {
	case "case_type":
		return c.CaseType, true
	case "document_type":
		return c.DocumentType, true
	case "filer_role":
		return c.FilerRole, true
	case "jurisdiction_id":
		return c.JurisdictionID, true
	case "division":
		if c.Division == nil {
			return "", false
		}
		return *c.Division, true
	case "assigned_judge":
		if c.AssignedJudge == nil {
			return "", false
		}
		return *c.AssignedJudge, true
	}

	v, ok := c.Metadata[field]
	if !ok {
		return "", false
	}
	return stringifyMetadata(v), true
}

// HasField reports whether a field is present in the context, without
// regard to its value.
func (c *FilingContext) HasField(field string) bool {
	switch field {
	case "case_type", "document_type", "filer_role", "jurisdiction_id":
		return true
	case "division":
		return c.Division != nil
	case "assigned_judge":
		return c.AssignedJudge != nil
	case "service_method":
		return c.ServiceMethod != nil
	}
	v, ok := c.Metadata[field]
	return ok && v != nil
}

func stringifyMetadata(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		// Arrays and nested objects compare by their JSON text.
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
