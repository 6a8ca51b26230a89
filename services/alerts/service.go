// Package alerts fires notification channels (golden hour, bank freeze, I4C and others) for
// a complaint and reads back its alert status.
package alerts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/the-monkeys/fraud_support/constants"
	"go.uber.org/zap"
)

type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

type Service struct {
	client Client
	log    *zap.SugaredLogger
}

func NewService(client Client, log *zap.SugaredLogger) *Service {
	return &Service{client: client, log: log}
}

// TriggerAllAlerts fires every applicable channel. Even when every channel fails the call
// succeeds; check AllSucceeded or Failed on the response.
func (s *Service) TriggerAllAlerts(ctx context.Context, complaintID string) (*TriggerAlertsResponse, error) {
	var resp TriggerAlertsResponse
	if err := s.client.Post(ctx, constants.RouteTriggerAlerts, triggerRequest{ComplaintID: complaintID}, &resp); err != nil {
		s.log.Errorw("triggering alerts failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("trigger alerts %s: %w", complaintID, err)
	}
	if !resp.AllSucceeded() {
		s.log.Warnw("some alert channels failed", "complaint_id", complaintID,
			"failed", resp.Summary.Failed, "total", resp.Summary.TotalAlerts)
	}
	return &resp, nil
}

func (s *Service) SendGoldenHourAlert(ctx context.Context, complaintID string) (*SingleAlertResponse, error) {
	return s.single(ctx, constants.RouteGoldenHourAlert, constants.AlertGoldenHour, complaintID)
}

// SendBankFreezeAlert asks the accused's bank to freeze the account. A "failed" status is a
// normal result, not an error.
func (s *Service) SendBankFreezeAlert(ctx context.Context, complaintID string) (*SingleAlertResponse, error) {
	return s.single(ctx, constants.RouteBankFreezeAlert, constants.AlertBankFreeze, complaintID)
}

func (s *Service) single(ctx context.Context, route, alertType, complaintID string) (*SingleAlertResponse, error) {
	var resp SingleAlertResponse
	if err := s.client.Post(ctx, route, triggerRequest{ComplaintID: complaintID}, &resp); err != nil {
		s.log.Errorw("sending alert failed", "alert_type", alertType, "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("send %s alert %s: %w", alertType, complaintID, err)
	}
	if !resp.Sent() {
		s.log.Warnw("alert not delivered", "alert_type", alertType, "complaint_id", complaintID, "message", resp.Message)
	}
	return &resp, nil
}

func (s *Service) GetAlertStatus(ctx context.Context, complaintID string) (*ComplaintAlertStatus, error) {
	var status ComplaintAlertStatus
	path := fmt.Sprintf(constants.RouteAlertStatus, url.PathEscape(complaintID))
	if err := s.client.Get(ctx, path, &status); err != nil {
		s.log.Errorw("fetching alert status failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("get alert status %s: %w", complaintID, err)
	}
	return &status, nil
}
