package config

// EnvPrefix is handed to envconfig; every field carries its full name.
const EnvPrefix = "MEMBERSHIP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MEMBERSHIP_APP_ENV"
	EnvPort     = "MEMBERSHIP_APP_PORT"
	EnvLogLevel = "MEMBERSHIP_LOG_LEVEL"

	EnvDBDSN  = "MEMBERSHIP_DB_DSN"
	EnvDBHost = "MEMBERSHIP_DB_HOST"
	EnvDBUser = "MEMBERSHIP_DB_USER"
	EnvDBName = "MEMBERSHIP_DB_NAME"

	EnvRedisURL = "MEMBERSHIP_REDIS_URL"

	EnvJWTSecret = "MEMBERSHIP_JWT_SECRET"
	EnvJWTIssuer = "MEMBERSHIP_JWT_ISSUER"

	EnvStripeAPIKey = "MEMBERSHIP_STRIPE_API_KEY"
	EnvStripeSecret = "MEMBERSHIP_STRIPE_SECRET"
	EnvStripeEnv    = "MEMBERSHIP_STRIPE_ENV"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
