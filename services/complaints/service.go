// Package complaints registers, reads, lists and updates fraud complaints.
package complaints

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/the-monkeys/fraud_support/constants"
	"go.uber.org/zap"
)

type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
}

type Service struct {
	client Client
	log    *zap.SugaredLogger
}

func NewService(client Client, log *zap.SugaredLogger) *Service {
	return &Service{client: client, log: log}
}

func (s *Service) CreateComplaint(ctx context.Context, data ComplaintCreate) (*Complaint, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}

	var c Complaint
	if err := s.client.Post(ctx, constants.RouteComplaints, data, &c); err != nil {
		s.log.Errorw("creating complaint failed", "fraud_type", data.FraudType, "district", data.District, "err", err)
		return nil, fmt.Errorf("create complaint: %w", err)
	}
	s.log.Debugw("complaint registered", "complaint_id", c.ComplaintID)
	return &c, nil
}

func (s *Service) GetComplaint(ctx context.Context, complaintID string) (*Complaint, error) {
	var c Complaint
	if err := s.client.Get(ctx, complaintPath(constants.RouteComplaint, complaintID), &c); err != nil {
		s.log.Errorw("fetching complaint failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("get complaint %s: %w", complaintID, err)
	}
	return &c, nil
}

// ListComplaints returns a page of complaints. Filter values are passed through as given.
func (s *Service) ListComplaints(ctx context.Context, filter ListFilter) (*ComplaintList, error) {
	path := constants.RouteComplaints
	if q := filter.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list ComplaintList
	if err := s.client.Get(ctx, path, &list); err != nil {
		s.log.Errorw("listing complaints failed", "status", filter.Status, "district", filter.District, "err", err)
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return &list, nil
}

func (f ListFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.District != "" {
		q.Set("district", f.District)
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset != 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// UpdateComplaint sends only the fields set in update.
func (s *Service) UpdateComplaint(ctx context.Context, complaintID string, update ComplaintUpdate) (*Complaint, error) {
	var c Complaint
	if err := s.client.Patch(ctx, complaintPath(constants.RouteComplaint, complaintID), update, &c); err != nil {
		s.log.Errorw("updating complaint failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("update complaint %s: %w", complaintID, err)
	}
	return &c, nil
}

// GetComplaintActivity returns the activity log in the order the server sent it.
func (s *Service) GetComplaintActivity(ctx context.Context, complaintID string) (*ActivityList, error) {
	var list ActivityList
	if err := s.client.Get(ctx, complaintPath(constants.RouteComplaintActivity, complaintID), &list); err != nil {
		s.log.Errorw("fetching activity failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("get activity %s: %w", complaintID, err)
	}
	return &list, nil
}

func complaintPath(route, complaintID string) string {
	return fmt.Sprintf(route, url.PathEscape(complaintID))
}
