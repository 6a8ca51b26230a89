package contact

import (
	"strings"

	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/constants"
)

const (
	placeholderOfficer = "Not assigned"
	placeholderField   = "N/A"
)

type ContactRequest struct {
	ComplaintID   string `json:"complaint_id"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	Priority      string `json:"priority"`
	ContactMethod string `json:"contact_method"`
}

// Validate checks the request before it is sent.
func (r ContactRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return &apiclient.ValidationError{Field: "subject", Reason: "subject is required"}
	}
	if strings.TrimSpace(r.Message) == "" {
		return &apiclient.ValidationError{Field: "message", Reason: "message is required"}
	}
	switch r.Priority {
	case constants.PriorityLow, constants.PriorityMedium, constants.PriorityHigh:
	default:
		return &apiclient.ValidationError{Field: "priority", Reason: "priority must be low, medium or high"}
	}
	switch r.ContactMethod {
	case constants.ContactEmail, constants.ContactPhone, constants.ContactSMS:
	default:
		return &apiclient.ValidationError{Field: "contact_method", Reason: "contact method must be email, phone or sms"}
	}
	return nil
}

type ContactResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TicketID       string `json:"ticket_id,omitempty"`
	OfficerContact string `json:"officer_contact,omitempty"`
}

// OfficerDetails lists who is handling a complaint. Empty fields are unknown.
type OfficerDetails struct {
	OfficerName  string `json:"officer_name,omitempty"`
	OfficerPhone string `json:"officer_phone,omitempty"`
	OfficerEmail string `json:"officer_email,omitempty"`
	Station      string `json:"station,omitempty"`
}

func (d OfficerDetails) Assigned() bool { return d.OfficerName != "" }

// WithPlaceholders fills unknown fields with display text.
func (d OfficerDetails) WithPlaceholders() OfficerDetails {
	if d.OfficerName == "" {
		d.OfficerName = placeholderOfficer
	}
	if d.OfficerPhone == "" {
		d.OfficerPhone = placeholderField
	}
	if d.OfficerEmail == "" {
		d.OfficerEmail = placeholderField
	}
	if d.Station == "" {
		d.Station = placeholderField
	}
	return d
}
