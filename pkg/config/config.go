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
	RateLimit    RateLimitConfig
	Reconcile    ReconcileConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"KITSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"KITSTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KITSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KITSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KITSTORE_DB_DSN"`
	Driver string `envconfig:"KITSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KITSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"KITSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KITSTORE_DB_USER"`
	LegacyPassword string `envconfig:"KITSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"KITSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"KITSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KITSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KITSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KITSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KITSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KITSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KITSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"KITSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"KITSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KITSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KITSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KITSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KITSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KITSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RateLimitConfig struct {
	UpdateWindow      time.Duration `envconfig:"KITSTORE_RATE_LIMIT_UPDATE_WINDOW" default:"1m"`
	UpdateIPLimit     int           `envconfig:"KITSTORE_RATE_LIMIT_UPDATE_IP_LIMIT" default:"30"`
	UpdateMemberLimit int           `envconfig:"KITSTORE_RATE_LIMIT_UPDATE_MEMBER_LIMIT" default:"10"`
}

// ReconcileConfig tunes the member uniform reconciliation engine.
type ReconcileConfig struct {
	// IdempotencyTTL is the window during which an identical resubmission
	// of an update request replays the stored response instead of
	// re-applying stock deltas.
	IdempotencyTTL    time.Duration `envconfig:"KITSTORE_RECONCILE_IDEMPOTENCY_TTL" default:"10s"`
	LowStockThreshold int           `envconfig:"KITSTORE_RECONCILE_LOW_STOCK_THRESHOLD" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"KITSTORE_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"KITSTORE_SQLITE_PATH" default:"kitstore.db"`
	AutoMigrate bool   `envconfig:"KITSTORE_AUTO_MIGRATE" default:"false"`
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
		Path:   "/" + db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
