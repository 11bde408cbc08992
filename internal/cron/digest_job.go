package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/db/models"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
	"github.com/angelmondragon/packfinderz-ops/pkg/metrics"
)

const (
	digestJobName       = "operations-digest"
	defaultDigestWindow = 30
	defaultConcurrency  = 4
	digestSnapshotTTL   = 48 * time.Hour
)

type digestStoreLister interface {
	ListDigestVendors(ctx context.Context, activeSince time.Time) ([]models.Store, error)
}

type snapshotWriter interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DigestKey(storeID string) string
}

// DigestJobParams configure the operations digest.
type DigestJobParams struct {
	Logger    *logger.Logger
	Stores    digestStoreLister
	Reports   analytics.Service
	Snapshots snapshotWriter
	Metrics   *metrics.DigestMetrics
	Config    config.DigestConfig
}

// DigestEntry is the per-store summary cached for the dashboard landing page.
type DigestEntry struct {
	StoreID         string            `json:"storeId"`
	CompanyName     string            `json:"companyName"`
	GeneratedAt     time.Time         `json:"generatedAt"`
	From            time.Time         `json:"from"`
	To              time.Time         `json:"to"`
	Orders          int               `json:"orders"`
	GMV             float64           `json:"gmv"`
	GMVChange       float64           `json:"gmvChange"`
	ActionListings  int               `json:"actionListings"`
	MonitorListings int               `json:"monitorListings"`
	OpenTasks       int               `json:"openTasks"`
	SLAOnTimeRate   *float64          `json:"slaOnTimeRate"`
	SLABreaches     int               `json:"slaBreaches"`
	PendingPayout   float64           `json:"pendingPayout"`
	NextPayout      *types.NextPayout `json:"nextPayout"`
	Anomalies       map[string]int    `json:"anomalies,omitempty"`
}

// NewDigestJob builds the cron job that refreshes every active vendor's digest.
func NewDigestJob(params DigestJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store lister required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("analytics service required")
	}
	cfg := params.Config
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaultDigestWindow
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &digestJob{
		logg:      params.Logger,
		stores:    params.Stores,
		reports:   params.Reports,
		snapshots: params.Snapshots,
		metrics:   params.Metrics,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

type digestJob struct {
	logg      *logger.Logger
	stores    digestStoreLister
	reports   analytics.Service
	snapshots snapshotWriter
	metrics   *metrics.DigestMetrics
	cfg       config.DigestConfig
	now       func() time.Time
}

func (j *digestJob) Name() string { return digestJobName }

func (j *digestJob) Run(ctx context.Context) error {
	end := j.now().UTC()
	start := end.AddDate(0, 0, -j.cfg.WindowDays)

	stores, err := j.stores.ListDigestVendors(ctx, start)
	if err != nil {
		return err
	}
	if len(stores) == 0 {
		j.logg.Info(ctx, "no vendor stores due for a digest")
		return nil
	}

	var (
		mu   sync.Mutex
		errs error
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.Concurrency)
	for _, store := range stores {
		store := store
		g.Go(func() error {
			if err := j.digestStore(gctx, store, start, end); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("store %s: %w", store.ID, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stores":    len(stores),
		"refreshed": done,
		"failed":    len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "operations digest refreshed")
	return errs
}

func (j *digestJob) digestStore(ctx context.Context, store models.Store, start, end time.Time) error {
	storeID := store.ID.String()
	ctx = j.logg.WithStoreID(ctx, storeID)

	report, err := j.reports.Operations(ctx, types.ReportRequest{
		StoreID: storeID,
		Scope:   types.ScopeVendor,
		Start:   start,
		End:     end,
	})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	entry := newDigestEntry(store, report, j.now().UTC())
	j.metrics.Publish(metrics.DigestSnapshot{
		StoreID:        storeID,
		ActionListings: entry.ActionListings,
		SLAOnTimeRatio: entry.SLAOnTimeRate,
		GMVChange:      entry.GMVChange,
	})

	if j.snapshots == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}
	if err := j.snapshots.Set(ctx, j.snapshots.DigestKey(storeID), payload, j.snapshotTTL()); err != nil {
		return fmt.Errorf("store digest: %w", err)
	}
	j.logg.Debug(ctx, "digest snapshot stored")
	return nil
}

// snapshotTTL keeps a snapshot alive across one missed cycle.
func (j *digestJob) snapshotTTL() time.Duration {
	if j.cfg.Interval > 0 {
		return 2 * j.cfg.Interval
	}
	return digestSnapshotTTL
}

func newDigestEntry(store models.Store, report *types.Report, generatedAt time.Time) DigestEntry {
	entry := DigestEntry{
		StoreID:         store.ID.String(),
		CompanyName:     store.CompanyName,
		GeneratedAt:     generatedAt,
		Orders:          report.SalesOverview.TotalOrders,
		GMV:             report.SalesOverview.GMV,
		GMVChange:       report.Trend.Change,
		ActionListings:  report.Compliance.Summary.Action,
		MonitorListings: report.Compliance.Summary.Monitor,
		OpenTasks:       len(report.Compliance.Tasks),
		SLAOnTimeRate:   report.SLA.Summary.OnTimeRate,
		SLABreaches:     report.SLA.Summary.Breaches,
		PendingPayout:   report.Settlements.Summary.PendingAmount,
		NextPayout:      report.Settlements.NextPayout,
	}
	if report.Window.From != nil {
		entry.From = *report.Window.From
	}
	if report.Window.To != nil {
		entry.To = *report.Window.To
	}
	for field, count := range report.Diagnostics.Anomalies {
		if count == 0 {
			continue
		}
		if entry.Anomalies == nil {
			entry.Anomalies = map[string]int{}
		}
		entry.Anomalies[field] = count
	}
	return entry
}
