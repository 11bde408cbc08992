package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	BigQuery     BigQueryConfig
	Source       SourceConfig
	Report       ReportConfig
	Digest       DigestConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Source.validate(); err != nil {
		return nil, err
	}
	if cfg.Source.UsesDB() {
		if err := cfg.DB.EnsureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	if err := cfg.Report.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"PACKFINDERZ_APP_ENV" required:"true"`
	Port         string   `envconfig:"PACKFINDERZ_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"PACKFINDERZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"PACKFINDERZ_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"PACKFINDERZ_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PACKFINDERZ_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PACKFINDERZ_DB_DSN"`
	Driver string `envconfig:"PACKFINDERZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PACKFINDERZ_DB_HOST"`
	LegacyPort     int    `envconfig:"PACKFINDERZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PACKFINDERZ_DB_USER"`
	LegacyPassword string `envconfig:"PACKFINDERZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"PACKFINDERZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"PACKFINDERZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PACKFINDERZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PACKFINDERZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PACKFINDERZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PACKFINDERZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PACKFINDERZ_REDIS_URL"`
	Address      string        `envconfig:"PACKFINDERZ_REDIS_ADDR"`
	Password     string        `envconfig:"PACKFINDERZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"PACKFINDERZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PACKFINDERZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PACKFINDERZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PACKFINDERZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PACKFINDERZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PACKFINDERZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PACKFINDERZ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PACKFINDERZ_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PACKFINDERZ_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PACKFINDERZ_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PACKFINDERZ_GOOGLE_APPLICATION_CREDENTIALS"`
}

type BigQueryConfig struct {
	Dataset                string `envconfig:"PACKFINDERZ_BIGQUERY_DATASET" default:"packfinderz"`
	MarketplaceEventsTable string `envconfig:"PACKFINDERZ_BIGQUERY_MARKETPLACE_TABLE" default:"marketplace_events"`
	MaxAttempts            int    `envconfig:"PACKFINDERZ_BIGQUERY_MAX_ATTEMPTS" default:"3"`
}

// SourceConfig selects where report input batches are loaded from.
type SourceConfig struct {
	Kind       string        `envconfig:"PACKFINDERZ_SOURCE_KIND" default:"db"`
	PageSize   int           `envconfig:"PACKFINDERZ_SOURCE_PAGE_SIZE" default:"100"`
	MaxRecords int           `envconfig:"PACKFINDERZ_SOURCE_MAX_RECORDS" default:"20000"`
	Timeout    time.Duration `envconfig:"PACKFINDERZ_SOURCE_TIMEOUT" default:"20s"`
}

// UsesDB reports whether the relational source is selected.
func (s SourceConfig) UsesDB() bool {
	return strings.EqualFold(strings.TrimSpace(s.Kind), SourceKindDB)
}

func (s SourceConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case SourceKindDB, SourceKindBigQuery:
		return nil
	default:
		return fmt.Errorf("%s must be one of %q or %q", EnvSourceKind, SourceKindDB, SourceKindBigQuery)
	}
}

// ReportConfig holds the engine defaults applied when a request does not override them.
type ReportConfig struct {
	TrendDays       int `envconfig:"PACKFINDERZ_REPORT_TREND_DAYS" default:"14"`
	SLATargetHours  int `envconfig:"PACKFINDERZ_REPORT_SLA_TARGET_HOURS" default:"72"`
	StaleAfterDays  int `envconfig:"PACKFINDERZ_REPORT_STALE_AFTER_DAYS" default:"45"`
	DefaultWindow   int `envconfig:"PACKFINDERZ_REPORT_DEFAULT_WINDOW_DAYS" default:"60"`
	MaxWindowDays   int `envconfig:"PACKFINDERZ_REPORT_MAX_WINDOW_DAYS" default:"90"`
	PayoutLagWeeks  int `envconfig:"PACKFINDERZ_REPORT_PAYOUT_LAG_WEEKS" default:"1"`
	ListingFloor    int `envconfig:"PACKFINDERZ_REPORT_LISTING_SCORE_FLOOR" default:"40"`
	ComplianceFloor int `envconfig:"PACKFINDERZ_REPORT_COMPLIANCE_SCORE_FLOOR" default:"20"`
}

func (r ReportConfig) validate() error {
	if r.TrendDays < 2 {
		return fmt.Errorf("%s must be at least 2", EnvReportTrendDays)
	}
	if r.MaxWindowDays > 0 && r.DefaultWindow > r.MaxWindowDays {
		return fmt.Errorf("%s cannot exceed %s", EnvReportDefaultWindow, EnvReportMaxWindow)
	}
	return nil
}

// DigestConfig controls the scheduled operations digest.
type DigestConfig struct {
	Interval    time.Duration `envconfig:"PACKFINDERZ_DIGEST_INTERVAL" default:"1h"`
	Concurrency int           `envconfig:"PACKFINDERZ_DIGEST_CONCURRENCY" default:"4"`
	WindowDays  int           `envconfig:"PACKFINDERZ_DIGEST_WINDOW_DAYS" default:"30"`
	LockTTL     time.Duration `envconfig:"PACKFINDERZ_DIGEST_LOCK_TTL" default:"55m"`
}

// EnsureDSN fills DSN from SQLite mode or the legacy host/user/name variables.
func (db *DBConfig) EnsureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = DBDriverSQLite
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
