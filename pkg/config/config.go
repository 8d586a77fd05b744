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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Webhook      WebhookConfig
	Catalog      CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEMBERSHIP_APP_ENV" required:"true"`
	Port         string `envconfig:"MEMBERSHIP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEMBERSHIP_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MEMBERSHIP_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MEMBERSHIP_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"MEMBERSHIP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEMBERSHIP_DB_DSN"`
	Driver string `envconfig:"MEMBERSHIP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEMBERSHIP_DB_HOST"`
	LegacyPort     int    `envconfig:"MEMBERSHIP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEMBERSHIP_DB_USER"`
	LegacyPassword string `envconfig:"MEMBERSHIP_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEMBERSHIP_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEMBERSHIP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEMBERSHIP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEMBERSHIP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEMBERSHIP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEMBERSHIP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// QueryTimeout bounds every ledger call made on behalf of a request.
	QueryTimeout time.Duration `envconfig:"MEMBERSHIP_DB_QUERY_TIMEOUT" default:"5s"`
	// SlowQuery is the threshold above which statements are logged at warn.
	// Zero disables query logging.
	SlowQuery time.Duration `envconfig:"MEMBERSHIP_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEMBERSHIP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEMBERSHIP_REDIS_ADDR"`
	Password     string        `envconfig:"MEMBERSHIP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEMBERSHIP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEMBERSHIP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEMBERSHIP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEMBERSHIP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEMBERSHIP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEMBERSHIP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEMBERSHIP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEMBERSHIP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEMBERSHIP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEMBERSHIP_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MEMBERSHIP_STRIPE_API_KEY" required:"true"`
	Secret string `envconfig:"MEMBERSHIP_STRIPE_SECRET" required:"true"`
	Env    string `envconfig:"MEMBERSHIP_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type WebhookConfig struct {
	MaxBodyBytes       int64         `envconfig:"MEMBERSHIP_WEBHOOK_MAX_BODY_BYTES" default:"65536"`
	SignatureTolerance time.Duration `envconfig:"MEMBERSHIP_WEBHOOK_SIGNATURE_TOLERANCE" default:"5m"`
	IdempotencyTTL     time.Duration `envconfig:"MEMBERSHIP_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

type CatalogConfig struct {
	// CacheTTL bounds how stale the public package list may be. Zero disables
	// the Redis cache.
	CacheTTL time.Duration `envconfig:"MEMBERSHIP_CATALOG_CACHE_TTL" default:"60s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
