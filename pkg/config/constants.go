package config

const (
	// EnvPrefix scopes every envconfig lookup.
	EnvPrefix = "OFFERHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "OFFERHUB_APP_ENV"
	EnvPort       = "OFFERHUB_APP_PORT"
	EnvDBDSN      = "OFFERHUB_DB_DSN"
	EnvDBHost     = "OFFERHUB_DB_HOST"
	EnvDBUser     = "OFFERHUB_DB_USER"
	EnvDBName     = "OFFERHUB_DB_NAME"
	EnvRedisURL   = "OFFERHUB_REDIS_URL"
	EnvJWTSecret  = "OFFERHUB_JWT_SECRET"
	EnvJWTIssuer  = "OFFERHUB_JWT_ISSUER"
	EnvJWTExpMins = "OFFERHUB_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
