package config

import (
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/fyodorov-ai/tsiolkovsky/common/env"
)

const (
	// StoreDriverSupabase persists through the hosted PostgREST endpoint.
	StoreDriverSupabase = "supabase"
	// StoreDriverSQL persists through a direct SQL connection.
	StoreDriverSQL = "sql"
)

// ServiceName is the default name reported in logs and telemetry.
const ServiceName = "tsiolkovsky"

var (
	// Port is the HTTP listen port.
	Port int
	// Environment names the deployment, "production" disables .env loading.
	Environment string
	// DebugEnabled lowers the log level to debug.
	DebugEnabled bool
	// GinMode overrides gin's run mode when set.
	GinMode string

	// StoreDriver selects the persistence backend.
	StoreDriver string
	// SupabaseProjectURL is the hosted project endpoint.
	SupabaseProjectURL string
	// SupabaseAPIKey is the credential sent with every PostgREST call.
	SupabaseAPIKey string
	// StoreTimeout bounds each PostgREST round trip, in seconds.
	StoreTimeout int

	// SQLDSN is the connection string for the sql driver.
	SQLDSN string
	SQLMaxIdleConns int
	SQLMaxOpenConns int
	// SQLMaxLifetime is the connection lifetime in seconds.
	SQLMaxLifetime int
	// AutoMigrate creates missing tables on start-up for the sql driver.
	AutoMigrate bool

	EnablePrometheusMetrics bool

	OpenTelemetryEnabled     bool
	OpenTelemetryEndpoint    string
	OpenTelemetryInsecure    bool
	OpenTelemetryServiceName string
	OpenTelemetryEnvironment string

	// CORSAllowedOrigins lists allowed origins, "*" allows all.
	CORSAllowedOrigins []string
	EnableGzip         bool
)

func init() {
	Load()
}

// Load (re)reads every setting from the environment.
func Load() {
	Port = env.Int("PORT", 3000)
	Environment = strings.ToLower(env.String("ENVIRONMENT", "development"))
	DebugEnabled = env.Bool("DEBUG", false)
	GinMode = env.String("GIN_MODE", "")

	StoreDriver = strings.ToLower(strings.TrimSpace(env.String("STORE_DRIVER", StoreDriverSupabase)))
	SupabaseProjectURL = strings.TrimRight(strings.TrimSpace(env.String("SUPABASE_PROJECT_URL", "")), "/")
	SupabaseAPIKey = strings.TrimSpace(env.String("SUPABASE_API_KEY", ""))
	StoreTimeout = env.Int("STORE_TIMEOUT", 30)

	SQLDSN = strings.TrimSpace(env.String("SQL_DSN", ""))
	SQLMaxIdleConns = env.Int("SQL_MAX_IDLE_CONNS", 100)
	SQLMaxOpenConns = env.Int("SQL_MAX_OPEN_CONNS", 1000)
	SQLMaxLifetime = env.Int("SQL_MAX_LIFETIME", 60)
	AutoMigrate = env.Bool("DB_AUTO_MIGRATE", true)

	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)

	OpenTelemetryEnabled = env.Bool("OTEL_ENABLED", false)
	OpenTelemetryEndpoint = env.String("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	OpenTelemetryInsecure = env.Bool("OTEL_EXPORTER_OTLP_INSECURE", false)
	OpenTelemetryServiceName = env.String("OTEL_SERVICE_NAME", ServiceName)
	// deployment.environment follows ENVIRONMENT unless OTEL_ENVIRONMENT overrides it
	OpenTelemetryEnvironment = Environment
	if env.Has("OTEL_ENVIRONMENT") {
		OpenTelemetryEnvironment = env.String("OTEL_ENVIRONMENT", "")
	}

	CORSAllowedOrigins = splitList(env.String("CORS_ALLOWED_ORIGINS", "*"))
	EnableGzip = env.Bool("ENABLE_GZIP", false)
}

// IsProduction reports whether the process runs in the production environment.
func IsProduction() bool {
	return Environment == "production"
}

// ValidateStore checks that the selected backend has both an endpoint and a credential.
func ValidateStore() error {
	switch StoreDriver {
	case StoreDriverSupabase:
		var missing []string
		if SupabaseProjectURL == "" {
			missing = append(missing, "SUPABASE_PROJECT_URL")
		}
		if SupabaseAPIKey == "" {
			missing = append(missing, "SUPABASE_API_KEY")
		}
		if len(missing) > 0 {
			return errors.Errorf("environment variables %s must be set", strings.Join(missing, " and "))
		}
		if !strings.HasPrefix(SupabaseProjectURL, "http://") && !strings.HasPrefix(SupabaseProjectURL, "https://") {
			return errors.Errorf("SUPABASE_PROJECT_URL must be an http(s) url, got %q", SupabaseProjectURL)
		}
	case StoreDriverSQL:
		if SQLDSN == "" {
			return errors.New("environment variable SQL_DSN must be set when STORE_DRIVER=sql")
		}
	default:
		return errors.Errorf("unsupported STORE_DRIVER %q", StoreDriver)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
