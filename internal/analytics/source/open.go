package source

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-ops/pkg/bigquery"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
)

// FromConfig selects the record source named by PACKFINDERZ_SOURCE_KIND.
func FromConfig(cfg *config.Config, db *gorm.DB, bq *bigquery.Client, logg *logger.Logger) (Source, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if cfg.Source.UsesDB() {
		src, err := NewDBSource(db, cfg.Source, logg)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if !strings.EqualFold(strings.TrimSpace(cfg.Source.Kind), config.SourceKindBigQuery) {
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
	if bq == nil {
		return nil, errors.New("bigquery client required for bigquery source")
	}
	retry := RetryPolicy{
		MaxAttempts:    cfg.BigQuery.MaxAttempts,
		InitialBackoff: defaultInitialBackoff,
		MaximumBackoff: defaultMaximumBackoff,
	}
	src, err := NewBigQuerySource(bq, bq.ProjectID(), bq.Dataset(), cfg.BigQuery.MarketplaceEventsTable, cfg.Source.MaxRecords, retry, logg)
	if err != nil {
		return nil, err
	}
	return src, nil
}
