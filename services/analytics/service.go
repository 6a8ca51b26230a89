// Package analytics reads aggregate projections over complaints. Every call issues a fresh
// request; nothing is cached.
package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/the-monkeys/fraud_support/constants"
	"github.com/the-monkeys/fraud_support/types"
	"go.uber.org/zap"
)

type Client interface {
	Get(ctx context.Context, path string, out any) error
}

type Service struct {
	client Client
	log    *zap.SugaredLogger
}

func NewService(client Client, log *zap.SugaredLogger) *Service {
	return &Service{client: client, log: log}
}

func (s *Service) GetAnalyticsSummary(ctx context.Context, q SummaryQuery) (*AnalyticsSummary, error) {
	values := dateValues(q.DateRange)
	if q.District != "" {
		values.Set("district", q.District)
	}

	var summary AnalyticsSummary
	if err := s.get(ctx, constants.RouteAnalyticsSummary, values, &summary); err != nil {
		return nil, fmt.Errorf("analytics summary: %w", err)
	}
	return &summary, nil
}

// GetCasesByStatus pages through cases in one status. A zero limit means the default page size.
func (s *Service) GetCasesByStatus(ctx context.Context, status string, page types.Page) (*CasesByStatus, error) {
	values := pageValues(page)
	values.Set("status", status)

	var cases CasesByStatus
	if err := s.get(ctx, constants.RouteCasesByStatus, values, &cases); err != nil {
		return nil, fmt.Errorf("cases by status %s: %w", status, err)
	}
	return &cases, nil
}

func (s *Service) GetFraudTypeStats(ctx context.Context, r types.DateRange) (*FraudTypeAnalytics, error) {
	var stats FraudTypeAnalytics
	if err := s.get(ctx, constants.RouteFraudTypes, dateValues(r), &stats); err != nil {
		return nil, fmt.Errorf("fraud type stats: %w", err)
	}
	return &stats, nil
}

func (s *Service) GetDistrictStats(ctx context.Context, r types.DateRange) (*DistrictAnalytics, error) {
	var stats DistrictAnalytics
	if err := s.get(ctx, constants.RouteByDistrict, dateValues(r), &stats); err != nil {
		return nil, fmt.Errorf("district stats: %w", err)
	}
	return &stats, nil
}

func (s *Service) GetPriorityCases(ctx context.Context, page types.Page) (*PriorityCases, error) {
	var cases PriorityCases
	if err := s.get(ctx, constants.RoutePriorityCases, pageValues(page), &cases); err != nil {
		return nil, fmt.Errorf("priority cases: %w", err)
	}
	return &cases, nil
}

func (s *Service) get(ctx context.Context, route string, values url.Values, out any) error {
	path := route
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	if err := s.client.Get(ctx, path, out); err != nil {
		s.log.Errorw("analytics request failed", "route", route, "query", values.Encode(), "err", err)
		return err
	}
	return nil
}

func dateValues(r types.DateRange) url.Values {
	values := url.Values{}
	if d := r.Start.String(); d != "" {
		values.Set("start_date", d)
	}
	if d := r.End.String(); d != "" {
		values.Set("end_date", d)
	}
	return values
}

func pageValues(page types.Page) url.Values {
	page = page.WithDefaults()
	return url.Values{
		"limit":  {strconv.Itoa(page.Limit)},
		"offset": {strconv.Itoa(page.Offset)},
	}
}
