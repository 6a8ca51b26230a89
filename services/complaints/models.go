package complaints

import (
	"strconv"
	"strings"
	"time"

	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/types"
)

// Complaint is a registered fraud case. Optional fields are empty when the backend
// does not return them.
type Complaint struct {
	ID              int64           `json:"id"`
	ComplaintID     string          `json:"complaint_id"`
	VictimPhone     string          `json:"victim_phone"`
	FraudType       string          `json:"fraud_type"`
	AmountLost      float64         `json:"amount_lost"`
	Status          string          `json:"status"`
	CreatedAt       types.Timestamp `json:"created_at"`
	IsPriority      bool            `json:"is_priority"`
	IsFundsFrozen   bool            `json:"is_funds_frozen"`
	AmountRecovered *float64        `json:"amount_recovered,omitempty"`
	District        string          `json:"district,omitempty"`
	FIRNumber       string          `json:"fir_number,omitempty"`
	AccusedBank     string          `json:"accused_bank,omitempty"`
	OfficerName     string          `json:"officer_name,omitempty"`
	OfficerPhone    string          `json:"officer_phone,omitempty"`
	OfficerEmail    string          `json:"officer_email,omitempty"`
	Station         string          `json:"station,omitempty"`
}

type ComplaintCreate struct {
	VictimPhone     string     `json:"victim_phone"`
	VictimName      string     `json:"victim_name"`
	FraudType       string     `json:"fraud_type"`
	AmountLost      float64    `json:"amount_lost"`
	AccusedAccount  string     `json:"accused_account,omitempty"`
	AccusedBank     string     `json:"accused_bank,omitempty"`
	TransactionID   string     `json:"transaction_id,omitempty"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	District        string     `json:"district"`
	Description     string     `json:"description"`
}

// Validate performs the structural checks done before a complaint is sent.
func (c ComplaintCreate) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"victim_phone", c.VictimPhone},
		{"victim_name", c.VictimName},
		{"fraud_type", c.FraudType},
		{"district", c.District},
		{"description", c.Description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &apiclient.ValidationError{Field: r.field, Reason: r.field + " is required"}
		}
	}
	if c.AmountLost < 0 {
		return &apiclient.ValidationError{Field: "amount_lost", Reason: "amount_lost must not be negative"}
	}
	return nil
}

// ComplaintUpdate is a partial update: nil fields are left untouched.
type ComplaintUpdate struct {
	Status          *string  `json:"status,omitempty"`
	FIRNumber       *string  `json:"fir_number,omitempty"`
	AmountRecovered *float64 `json:"amount_recovered,omitempty"`
}

// ListFilter narrows ListComplaints. Zero fields are not sent.
type ListFilter struct {
	Status   string
	District string
	Limit    int
	Offset   int
}

type ComplaintList struct {
	types.ListMeta
	Complaints []Complaint `json:"complaints"`
}

func (l *ComplaintList) Header() []string {
	return []string{"Complaint ID", "Fraud Type", "Amount Lost", "Status", "Created At", "Priority", "Funds Frozen"}
}

func (l *ComplaintList) Records() [][]string {
	rows := make([][]string, 0, len(l.Complaints))
	for _, c := range l.Complaints {
		rows = append(rows, []string{
			c.ComplaintID,
			c.FraudType,
			strconv.FormatFloat(c.AmountLost, 'f', 2, 64),
			c.Status,
			c.CreatedAt.Format(time.RFC3339),
			strconv.FormatBool(c.IsPriority),
			strconv.FormatBool(c.IsFundsFrozen),
		})
	}
	return rows
}

type ActivityLog struct {
	ID          int64           `json:"id"`
	ActionType  string          `json:"action_type"`
	Description string          `json:"description"`
	Remarks     string          `json:"remarks"`
	CreatedAt   types.Timestamp `json:"created_at"`
	CreatedBy   string          `json:"created_by"`
}

type ActivityList struct {
	ComplaintID string        `json:"complaint_id"`
	Activities  []ActivityLog `json:"activities"`
}

func (a *ActivityList) Header() []string {
	return []string{"ID", "Action", "Description", "Remarks", "Created At", "Created By"}
}

func (a *ActivityList) Records() [][]string {
	rows := make([][]string, 0, len(a.Activities))
	for _, e := range a.Activities {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.ActionType,
			e.Description,
			e.Remarks,
			e.CreatedAt.Format(time.RFC3339),
			e.CreatedBy,
		})
	}
	return rows
}
