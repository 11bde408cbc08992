package config

const (
	EnvPrefix = "PACKFINDERZ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SourceKindDB       = "db"
	SourceKindBigQuery = "bigquery"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:packfinderz-ops.db?cache=shared"
)

const (
	EnvAppEnv   = "PACKFINDERZ_APP_ENV"
	EnvPort     = "PACKFINDERZ_APP_PORT"
	EnvLogLevel = "PACKFINDERZ_LOG_LEVEL"

	EnvDBDSN  = "PACKFINDERZ_DB_DSN"
	EnvDBHost = "PACKFINDERZ_DB_HOST"
	EnvDBUser = "PACKFINDERZ_DB_USER"
	EnvDBName = "PACKFINDERZ_DB_NAME"

	EnvUseSQLite = "PACKFINDERZ_USE_SQLITE"
	EnvRedisURL  = "PACKFINDERZ_REDIS_URL"

	EnvGCPProjectID = "PACKFINDERZ_GCP_PROJECT_ID"

	EnvSourceKind          = "PACKFINDERZ_SOURCE_KIND"
	EnvReportTrendDays     = "PACKFINDERZ_REPORT_TREND_DAYS"
	EnvReportDefaultWindow = "PACKFINDERZ_REPORT_DEFAULT_WINDOW_DAYS"
	EnvReportMaxWindow     = "PACKFINDERZ_REPORT_MAX_WINDOW_DAYS"
	EnvDigestInterval      = "PACKFINDERZ_DIGEST_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
