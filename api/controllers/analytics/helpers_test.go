package analytics

import (
	"context"
	"time"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
)

type testAnalyticsService struct {
	calls    int
	last     types.ReportRequest
	response *types.Report
	err      error
}

func (s *testAnalyticsService) Operations(ctx context.Context, req types.ReportRequest) (*types.Report, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response == nil {
		s.response = &types.Report{}
	}
	return s.response, nil
}

func (s *testAnalyticsService) called() bool {
	return s.calls > 0
}

func (s *testAnalyticsService) period() time.Duration {
	return s.last.End.Sub(s.last.Start)
}
