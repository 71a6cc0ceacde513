package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Payment       PaymentConfig
	Gemini        GeminiConfig
	Storage       StorageConfig
	Cron          CronConfig
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
	Env           string   `envconfig:"ROI_APP_ENV" required:"true"`
	Port          string   `envconfig:"ROI_APP_PORT" required:"true"`
	LogLevel      string   `envconfig:"ROI_LOG_LEVEL" default:"info"`
	LogWarnStack  bool     `envconfig:"ROI_LOG_WARN_STACK" default:"false"`
	LogFormat     string   `envconfig:"ROI_LOG_FORMAT" default:"json"`
	PublicBaseURL string   `envconfig:"ROI_PUBLIC_BASE_URL" default:"http://localhost:8080"`
	CORSOrigins   []string `envconfig:"ROI_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ROI_DB_DSN"`

	LegacyHost     string `envconfig:"ROI_DB_HOST"`
	LegacyPort     int    `envconfig:"ROI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ROI_DB_USER"`
	LegacyPassword string `envconfig:"ROI_DB_PASSWORD"`
	LegacyName     string `envconfig:"ROI_DB_NAME"`
	LegacySSLMode  string `envconfig:"ROI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROI_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"ROI_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
	ConnectAttempts    int           `envconfig:"ROI_DB_CONNECT_ATTEMPTS" default:"5"`
	ConnectBackoff     time.Duration `envconfig:"ROI_DB_CONNECT_BACKOFF" default:"1s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ROI_REDIS_ADDR"`
	Password     string        `envconfig:"ROI_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ROI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ROI_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ROI_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ROI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ROI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ROI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ROI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ROI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ROI_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ROI_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ROI_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ROI_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ROI_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ROI_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ROI_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"ROI_AUTO_MIGRATE" default:"false"`
	ArchiveReports bool `envconfig:"ROI_ARCHIVE_REPORTS" default:"false"`
}

// PaymentConfig holds the mock gateway settings used when a user buys
// unlimited access.
type PaymentConfig struct {
	Amount             string        `envconfig:"ROI_PAYMENT_AMOUNT" default:"1.00"`
	Currency           string        `envconfig:"ROI_PAYMENT_CURRENCY" default:"INR"`
	GatewayKeyID       string        `envconfig:"ROI_PAYMENT_GATEWAY_KEY_ID" default:"rzp_test_demo_key"`
	PaymentButtonID    string        `envconfig:"ROI_PAYMENT_BUTTON_ID" default:"pl_demo_button"`
	GatewaySecret      string        `envconfig:"ROI_PAYMENT_GATEWAY_SECRET"`
	WebhookSecret      string        `envconfig:"ROI_PAYMENT_WEBHOOK_SECRET"`
	PendingTTL         time.Duration `envconfig:"ROI_PAYMENT_PENDING_TTL" default:"24h"`
	WebhookIdempotency time.Duration `envconfig:"ROI_PAYMENT_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type GeminiConfig struct {
	APIKey            string  `envconfig:"ROI_GEMINI_API_KEY"`
	Model             string  `envconfig:"ROI_GEMINI_MODEL" default:"gemini-1.5-flash"`
	MaxOutputTokens   int32   `envconfig:"ROI_GEMINI_MAX_OUTPUT_TOKENS" default:"500"`
	Temperature       float32 `envconfig:"ROI_GEMINI_TEMPERATURE" default:"0.7"`
	RequestsPerSecond float64 `envconfig:"ROI_GEMINI_REQUESTS_PER_SECOND" default:"2"`
	Burst             int     `envconfig:"ROI_GEMINI_BURST" default:"4"`
}

// StorageConfig points at an S3-compatible bucket used to archive exported
// reports. An empty endpoint disables archiving.
type StorageConfig struct {
	Endpoint  string `envconfig:"ROI_STORAGE_ENDPOINT"`
	AccessKey string `envconfig:"ROI_STORAGE_ACCESS_KEY"`
	SecretKey string `envconfig:"ROI_STORAGE_SECRET_KEY"`
	Bucket    string `envconfig:"ROI_STORAGE_BUCKET" default:"roi-reports"`
	Region    string `envconfig:"ROI_STORAGE_REGION"`
	Secure    bool   `envconfig:"ROI_STORAGE_SECURE" default:"true"`
}

// Enabled reports whether object storage credentials were supplied.
func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != ""
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"ROI_CRON_INTERVAL" default:"1h"`
	LockTTL    time.Duration `envconfig:"ROI_CRON_LOCK_TTL" default:"10m"`
	JobTimeout time.Duration `envconfig:"ROI_CRON_JOB_TIMEOUT" default:"5m"`
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
