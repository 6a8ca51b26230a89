package analytics

import (
	"strconv"
	"time"

	"github.com/the-monkeys/fraud_support/types"
)

// SummaryQuery scopes the summary. Zero dates and an empty district are not sent; the server
// then defaults to the last 30 days across all districts.
type SummaryQuery struct {
	DateRange types.DateRange
	District  string
}

type AnalyticsSummary struct {
	TotalCases     int          `json:"total_cases"`
	TotalLost      float64      `json:"total_lost"`
	TotalRecovered float64      `json:"total_recovered"`
	Resolved       int          `json:"resolved"`
	Pending        int          `json:"pending"`
	RecoveryRate   string       `json:"recovery_rate,omitempty"`
	Period         types.Period `json:"period"`
}

type StatusCase struct {
	ComplaintID     string          `json:"complaint_id"`
	FraudType       string          `json:"fraud_type"`
	AmountLost      float64         `json:"amount_lost"`
	AmountRecovered float64         `json:"amount_recovered"`
	CreatedAt       types.Timestamp `json:"created_at"`
	IsPriority      bool            `json:"is_priority"`
}

type CasesByStatus struct {
	types.ListMeta
	Status string       `json:"status"`
	Cases  []StatusCase `json:"cases"`
}

func (c *CasesByStatus) Header() []string {
	return []string{"Complaint ID", "Fraud Type", "Amount Lost", "Amount Recovered", "Created At", "Priority"}
}

func (c *CasesByStatus) Records() [][]string {
	rows := make([][]string, 0, len(c.Cases))
	for _, sc := range c.Cases {
		rows = append(rows, []string{
			sc.ComplaintID,
			sc.FraudType,
			money(sc.AmountLost),
			money(sc.AmountRecovered),
			sc.CreatedAt.Format(time.RFC3339),
			strconv.FormatBool(sc.IsPriority),
		})
	}
	return rows
}

type FraudTypeStats struct {
	FraudType     string  `json:"fraud_type"`
	Count         int     `json:"count"`
	TotalAmount   float64 `json:"total_amount"`
	AverageAmount float64 `json:"average_amount"`
}

type FraudTypeAnalytics struct {
	Period     types.Period     `json:"period"`
	FraudTypes []FraudTypeStats `json:"fraud_types"`
}

func (f *FraudTypeAnalytics) Header() []string {
	return []string{"Fraud Type", "Count", "Total Amount", "Average Amount"}
}

func (f *FraudTypeAnalytics) Records() [][]string {
	rows := make([][]string, 0, len(f.FraudTypes))
	for _, s := range f.FraudTypes {
		rows = append(rows, []string{s.FraudType, strconv.Itoa(s.Count), money(s.TotalAmount), money(s.AverageAmount)})
	}
	return rows
}

type DistrictStats struct {
	District       string  `json:"district"`
	Cases          int     `json:"cases"`
	TotalLost      float64 `json:"total_lost"`
	TotalRecovered float64 `json:"total_recovered"`
	RecoveryRate   string  `json:"recovery_rate"`
}

type DistrictAnalytics struct {
	Period    types.Period    `json:"period"`
	Districts []DistrictStats `json:"districts"`
}

func (d *DistrictAnalytics) Header() []string {
	return []string{"District", "Cases", "Total Lost", "Total Recovered", "Recovery Rate"}
}

func (d *DistrictAnalytics) Records() [][]string {
	rows := make([][]string, 0, len(d.Districts))
	for _, s := range d.Districts {
		rows = append(rows, []string{s.District, strconv.Itoa(s.Cases), money(s.TotalLost), money(s.TotalRecovered), s.RecoveryRate})
	}
	return rows
}

// PriorityCaseItem is a case flagged as part of an organised pattern. AccusedAccount is
// masked by the server and nil when unknown.
type PriorityCaseItem struct {
	ComplaintID    string          `json:"complaint_id"`
	FraudType      string          `json:"fraud_type"`
	AmountLost     float64         `json:"amount_lost"`
	AccusedAccount *string         `json:"accused_account"`
	AccusedBank    string          `json:"accused_bank"`
	CreatedAt      types.Timestamp `json:"created_at"`
}

type PriorityCases struct {
	types.ListMeta
	PriorityCases []PriorityCaseItem `json:"priority_cases"`
}

func (p *PriorityCases) Header() []string {
	return []string{"Complaint ID", "Fraud Type", "Amount Lost", "Accused Account", "Accused Bank", "Created At"}
}

func (p *PriorityCases) Records() [][]string {
	rows := make([][]string, 0, len(p.PriorityCases))
	for _, c := range p.PriorityCases {
		account := ""
		if c.AccusedAccount != nil {
			account = *c.AccusedAccount
		}
		rows = append(rows, []string{
			c.ComplaintID,
			c.FraudType,
			money(c.AmountLost),
			account,
			c.AccusedBank,
			c.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
