// Package contact lets a victim message the officer investigating their complaint.
package contact

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

func (s *Service) SendContactRequest(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("contact officer: %w", err)
	}

	var resp ContactResponse
	if err := s.client.Post(ctx, constants.RouteContactOfficer, req, &resp); err != nil {
		s.log.Errorw("contact request failed", "complaint_id", req.ComplaintID, "priority", req.Priority, "err", err)
		return nil, fmt.Errorf("contact officer: %w", err)
	}
	s.log.Debugw("contact request sent", "complaint_id", req.ComplaintID, "ticket_id", resp.TicketID)
	return &resp, nil
}

// GetOfficerDetails reads the officer fields off the complaint record.
func (s *Service) GetOfficerDetails(ctx context.Context, complaintID string) (*OfficerDetails, error) {
	var details OfficerDetails
	path := fmt.Sprintf(constants.RouteComplaint, url.PathEscape(complaintID))
	if err := s.client.Get(ctx, path, &details); err != nil {
		s.log.Errorw("fetching officer details failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("officer details %s: %w", complaintID, err)
	}
	return &details, nil
}
