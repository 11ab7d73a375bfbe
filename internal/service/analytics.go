package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/analytics"
	"github.com/shahamitr/parichay-sub004/internal/dto"
	"github.com/shahamitr/parichay-sub004/internal/metrics"
	"github.com/shahamitr/parichay-sub004/internal/repository"
)

// ErrInvalidDateRange is returned when a summary request's end date precedes
// its start date. The handler maps it to a 400 rather than a 500.
var ErrInvalidDateRange = errors.New("start_date must be less than or equal to end_date")

// AnalyticsService computes dashboard summaries by streaming event windows
// out of the repository through the aggregation fold. It holds no state
// between calls; concurrent requests each own their accumulator.
type AnalyticsService struct {
	repository repository.EventRepository
	location   *time.Location
	clock      func() time.Time
	log        *zap.Logger
}

// NewAnalyticsService creates a new analytics service. The location governs
// hour-of-day and calendar-day bucketing; clock may be nil (time.Now) and
// anchors the realtime lookback.
func NewAnalyticsService(repo repository.EventRepository, location *time.Location, clock func() time.Time, log *zap.Logger) *AnalyticsService {
	if clock == nil {
		clock = time.Now
	}
	return &AnalyticsService{
		repository: repo,
		location:   location,
		clock:      clock,
		log:        log,
	}
}

// GetSummary streams the requested window and folds it into a Summary. An
// empty window yields a fully-populated zero summary, never an error.
func (s *AnalyticsService) GetSummary(ctx context.Context, brandID string, req *dto.GetSummaryRequest) (*analytics.Summary, error) {
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		s.log.Warn("Invalid date range for summary",
			zap.Time("start_date", req.StartDate),
			zap.Time("end_date", req.EndDate),
			zap.String("brand_id", brandID))
		return nil, ErrInvalidDateRange
	}

	window := repository.EventWindow{
		Scope: repository.EventScope{BrandID: brandID, BranchID: req.BranchID},
		From:  req.StartDate,
	}
	if !req.EndDate.IsZero() {
		// end_date is a whole inclusive day
		window.To = req.EndDate.AddDate(0, 0, 1).Add(-time.Second)
	}

	s.log.Info("Computing summary",
		zap.String("brand_id", brandID),
		zap.String("branch_id", req.BranchID),
		zap.Time("from", window.From),
		zap.Time("to", window.To))

	started := s.clock()
	acc := analytics.NewAccumulator(s.location)

	err := s.repository.StreamWindow(ctx, window, func(e analytics.Event) error {
		acc.Add(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stream events for summary: %w", err)
	}

	metrics.SummaryBuildSeconds.Observe(s.clock().Sub(started).Seconds())

	return acc.Summarize(), nil
}

// GetRealtime folds the fixed 30-minute lookback into a realtime snapshot.
func (s *AnalyticsService) GetRealtime(ctx context.Context, brandID, branchID string) (*analytics.RealtimeSnapshot, error) {
	metrics.RealtimeRequests.Inc()

	now := s.clock()
	scope := repository.EventScope{BrandID: brandID, BranchID: branchID}
	acc := analytics.NewRealtimeAccumulator(now)

	err := s.repository.StreamRecent(ctx, scope, now.Add(-analytics.RealtimeWindow), func(e analytics.Event) error {
		acc.Add(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stream recent events: %w", err)
	}

	return acc.Snapshot(), nil
}
