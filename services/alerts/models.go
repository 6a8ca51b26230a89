package alerts

import "github.com/the-monkeys/fraud_support/constants"

type triggerRequest struct {
	ComplaintID string `json:"complaint_id"`
}

// ChannelResult is the outcome of one alert channel.
type ChannelResult struct {
	AlertType string `json:"alert_type"`
	Status    bool   `json:"status"`
	Message   string `json:"message"`
}

type Summary struct {
	TotalAlerts int `json:"total_alerts"`
	Successful  int `json:"successful"`
	Failed      int `json:"failed"`
}

// TriggerAlertsResponse reports every channel fired for a complaint. Channel failures are
// reported here rather than as an error.
type TriggerAlertsResponse struct {
	ComplaintID string          `json:"complaint_id"`
	Alerts      []ChannelResult `json:"alerts"`
	Summary     Summary         `json:"summary"`
}

func (r *TriggerAlertsResponse) AllSucceeded() bool {
	return r.Summary.Failed == 0
}

// Failed lists the channels that did not go out.
func (r *TriggerAlertsResponse) Failed() []ChannelResult {
	var failed []ChannelResult
	for _, a := range r.Alerts {
		if !a.Status {
			failed = append(failed, a)
		}
	}
	return failed
}

// Consistent reports whether the summary agrees with the per-channel results.
func (r *TriggerAlertsResponse) Consistent() bool {
	ok := 0
	for _, a := range r.Alerts {
		if a.Status {
			ok++
		}
	}
	s := r.Summary
	return s.TotalAlerts == len(r.Alerts) &&
		s.Successful == ok &&
		s.Failed == len(r.Alerts)-ok &&
		s.Successful+s.Failed == s.TotalAlerts
}

// SingleAlertResponse is the result of a golden-hour or bank-freeze alert. Bank and Account
// are only set for bank freezes; Account is masked by the server.
type SingleAlertResponse struct {
	ComplaintID string `json:"complaint_id"`
	AlertType   string `json:"alert_type"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Bank        string `json:"bank,omitempty"`
	Account     string `json:"account,omitempty"`
}

func (r *SingleAlertResponse) Sent() bool { return r.Status == constants.AlertSent }

type ComplaintAlertStatus struct {
	ComplaintID   string `json:"complaint_id"`
	IsFundsFrozen bool   `json:"is_funds_frozen"`
	IsPriority    bool   `json:"is_priority"`
	FIRRegistered bool   `json:"fir_registered"`
	Status        string `json:"status"`
}
