package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/engine"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/scoring"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/source"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
	"github.com/angelmondragon/packfinderz-ops/pkg/metrics"
)

// Bounds accepted for request overrides.
const (
	MinTrendDays      = 7
	MaxTrendDays      = 90
	MinSLATargetHours = 1
	MaxSLATargetHours = 720
)

var timeNowUTC = func() time.Time { return time.Now().UTC() }

// Service builds operations reports on demand.
type Service interface {
	// Operations loads the window's records and returns the derived report.
	Operations(ctx context.Context, req types.ReportRequest) (*types.Report, error)
}

// ServiceParams wires a Service.
type ServiceParams struct {
	Source        source.Source
	Report        config.ReportConfig
	SourceTimeout time.Duration
	Metrics       *metrics.ReportMetrics
	Logger        *logger.Logger
}

type service struct {
	source        source.Source
	cfg           config.ReportConfig
	sourceTimeout time.Duration
	metrics       *metrics.ReportMetrics
	logg          *logger.Logger
}

// NewService builds an analytics service over the provided record source.
func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, errors.New("record source required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		source:        params.Source,
		cfg:           params.Report,
		sourceTimeout: params.SourceTimeout,
		metrics:       params.Metrics,
		logg:          logg,
	}, nil
}

func (s *service) Operations(ctx context.Context, req types.ReportRequest) (*types.Report, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	ctx = s.logg.WithScope(ctx, string(req.Scope))
	if req.StoreID != "" {
		ctx = s.logg.WithStoreID(ctx, req.StoreID)
	}

	started := timeNowUTC()
	loadCtx := ctx
	if s.sourceTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, s.sourceTimeout)
		defer cancel()
	}
	batch, err := s.source.Load(loadCtx, types.Query{
		StoreID: req.StoreID,
		Scope:   req.Scope,
		Start:   req.Start.UTC(),
		End:     req.End.UTC(),
	})
	if err != nil {
		s.logg.Error(ctx, "loading operations records failed", err)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load operations records")
	}

	report := engine.Build(batch, s.options(req))
	elapsed := timeNowUTC().Sub(started)

	s.metrics.ObserveBuild(string(req.Scope), elapsed)
	for kind, count := range report.Diagnostics.Records {
		s.metrics.AddRecords(kind, count)
	}
	s.metrics.AddAnomalies(report.Diagnostics.Anomalies)

	anomalies := 0
	for _, count := range report.Diagnostics.Anomalies {
		anomalies += count
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"records":     batch.Len(),
		"anomalies":   anomalies,
		"listings":    len(report.Assortment),
		"duration_ms": elapsed.Milliseconds(),
	}), "operations report built")

	return &report, nil
}

func (s *service) options(req types.ReportRequest) engine.Options {
	start, end := req.Start.UTC(), req.End.UTC()
	opts := engine.Options{
		AsOf:           end,
		From:           &start,
		To:             &end,
		TrendDays:      firstPositive(req.TrendDays, s.cfg.TrendDays),
		SLATargetHours: firstPositive(req.SLATargetHours, s.cfg.SLATargetHours),
		StaleAfterDays: s.cfg.StaleAfterDays,
		PayoutLagWeeks: s.cfg.PayoutLagWeeks,
		Listing:        scoring.DefaultListingPolicy(),
		Compliance:     scoring.DefaultCompliancePolicy(),
	}
	if s.cfg.ListingFloor > 0 {
		opts.Listing.Floor = s.cfg.ListingFloor
	}
	if s.cfg.ComplianceFloor > 0 {
		opts.Compliance.Floor = s.cfg.ComplianceFloor
	}
	return opts
}

func (s *service) validate(req types.ReportRequest) error {
	if !req.Scope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid report scope")
	}
	if req.Scope != types.ScopeAdmin && strings.TrimSpace(req.StoreID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if !req.End.After(req.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	if s.cfg.MaxWindowDays > 0 && req.End.Sub(req.Start) > time.Duration(s.cfg.MaxWindowDays)*24*time.Hour {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("window cannot exceed %d days", s.cfg.MaxWindowDays))
	}
	if req.TrendDays != 0 && (req.TrendDays < MinTrendDays || req.TrendDays > MaxTrendDays) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("trend days must be between %d and %d", MinTrendDays, MaxTrendDays))
	}
	if req.SLATargetHours != 0 && (req.SLATargetHours < MinSLATargetHours || req.SLATargetHours > MaxSLATargetHours) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("sla target hours must be between %d and %d", MinSLATargetHours, MaxSLATargetHours))
	}
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
