package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every configuration variable.
	EnvPrefix = "LAF"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "LAF_DB_DSN"
	EnvDBHost = "LAF_DB_HOST"
	EnvDBUser = "LAF_DB_USER"
	EnvDBName = "LAF_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Chat      ChatConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"LAF_APP_ENV" required:"true"`
	Port         string `envconfig:"LAF_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LAF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LAF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LAF_DB_DSN"`
	Driver string `envconfig:"LAF_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LAF_DB_HOST"`
	LegacyPort     int    `envconfig:"LAF_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LAF_DB_USER"`
	LegacyPassword string `envconfig:"LAF_DB_PASSWORD"`
	LegacyName     string `envconfig:"LAF_DB_NAME"`
	LegacySSLMode  string `envconfig:"LAF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LAF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LAF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LAF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LAF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LAF_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LAF_REDIS_ADDR"`
	Password     string        `envconfig:"LAF_REDIS_PASSWORD"`
	DB           int           `envconfig:"LAF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LAF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LAF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LAF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LAF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LAF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LAF_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LAF_JWT_ISSUER" default:"lostandfound"`
	ExpirationMinutes int    `envconfig:"LAF_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type ChatConfig struct {
	// OpenLostThreads keeps conversations on lost-item posts open to any
	// authenticated user. When false, lost posts gate on approved claims the
	// same way found posts do.
	OpenLostThreads bool `envconfig:"LAF_CHAT_OPEN_LOST_THREADS" default:"true"`
	MaxMessageLen   int  `envconfig:"LAF_CHAT_MAX_MESSAGE_LEN" default:"2000"`
}

type StorageConfig struct {
	BucketName             string        `envconfig:"LAF_GCS_BUCKET_NAME"`
	ObjectPrefix           string        `envconfig:"LAF_GCS_OBJECT_PREFIX" default:"evidence"`
	CredentialsJSON        string        `envconfig:"LAF_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string        `envconfig:"LAF_GOOGLE_APPLICATION_CREDENTIALS"`
	RequestTimeout         time.Duration `envconfig:"LAF_GCS_REQUEST_TIMEOUT" default:"30s"`
	MaxUploadMB            int           `envconfig:"LAF_MAX_UPLOAD_MB" default:"20"`
}

// MaxUploadBytes returns the evidence upload cap in bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

type RateLimitConfig struct {
	MessageWindow time.Duration `envconfig:"LAF_RATE_LIMIT_MESSAGE_WINDOW" default:"1m"`
	MessageLimit  int           `envconfig:"LAF_RATE_LIMIT_MESSAGE_LIMIT" default:"30"`
	ClaimWindow   time.Duration `envconfig:"LAF_RATE_LIMIT_CLAIM_WINDOW" default:"1h"`
	ClaimLimit    int           `envconfig:"LAF_RATE_LIMIT_CLAIM_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LAF_AUTO_MIGRATE" default:"false"`
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
