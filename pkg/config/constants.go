package config

const (
	EnvPrefix = "KITSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "KITSTORE_APP_ENV"
	EnvPort     = "KITSTORE_APP_PORT"
	EnvDBDSN    = "KITSTORE_DB_DSN"
	EnvDBHost   = "KITSTORE_DB_HOST"
	EnvDBUser   = "KITSTORE_DB_USER"
	EnvDBName   = "KITSTORE_DB_NAME"
	EnvRedisURL = "KITSTORE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
