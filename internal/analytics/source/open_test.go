package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/packfinderz-ops/pkg/config"
)

func TestFromConfigSelectsDBSource(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{Source: config.SourceConfig{Kind: "db", PageSize: 50, MaxRecords: 100}}

	src, err := FromConfig(cfg, db, nil, nil)
	require.NoError(t, err)
	_, ok := src.(*DBSource)
	assert.True(t, ok, "expected a DBSource, got %T", src)
}

func TestFromConfigRejectsMissingClients(t *testing.T) {
	_, err := FromConfig(&config.Config{Source: config.SourceConfig{Kind: "db"}}, nil, nil, nil)
	assert.Error(t, err)

	_, err = FromConfig(&config.Config{Source: config.SourceConfig{Kind: "bigquery"}}, nil, nil, nil)
	assert.EqualError(t, err, "bigquery client required for bigquery source")

	_, err = FromConfig(&config.Config{Source: config.SourceConfig{Kind: "kafka"}}, nil, nil, nil)
	assert.Error(t, err)

	_, err = FromConfig(nil, nil, nil, nil)
	assert.Error(t, err)
}
