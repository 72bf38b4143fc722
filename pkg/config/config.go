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
	Invites       InviteConfig
	GCP           GCPConfig
	Storage       StorageConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Stripe        StripeConfig
	Mail          MailConfig
	Automation    AutomationConfig
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
	Env          string `envconfig:"AETHERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"AETHERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AETHERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AETHERDESK_LOG_WARN_STACK" default:"false"`
	PublicURL    string `envconfig:"AETHERDESK_PUBLIC_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AETHERDESK_DB_DSN"`
	Driver string `envconfig:"AETHERDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AETHERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"AETHERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AETHERDESK_DB_USER"`
	LegacyPassword string `envconfig:"AETHERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"AETHERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"AETHERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AETHERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AETHERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AETHERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AETHERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AETHERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AETHERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"AETHERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AETHERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AETHERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AETHERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AETHERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AETHERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AETHERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AETHERDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AETHERDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AETHERDESK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AETHERDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AETHERDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AETHERDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AETHERDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AETHERDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AETHERDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AETHERDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AETHERDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AETHERDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AETHERDESK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AETHERDESK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AETHERDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AETHERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AETHERDESK_AUTO_MIGRATE" default:"false"`
}

// InviteConfig controls team invitation issuance.
type InviteConfig struct {
	TokenTTL        time.Duration `envconfig:"AETHERDESK_INVITE_TOKEN_TTL" default:"24h"`
	DefaultTeamSize int           `envconfig:"AETHERDESK_INVITE_DEFAULT_TEAM_SIZE" default:"3"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AETHERDESK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"AETHERDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AETHERDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

// StorageConfig points file uploads at a GCS bucket. An empty bucket name
// disables the file endpoints.
type StorageConfig struct {
	BucketName     string `envconfig:"AETHERDESK_GCS_BUCKET"`
	MaxUploadBytes int64  `envconfig:"AETHERDESK_GCS_MAX_UPLOAD_BYTES" default:"20971520"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"AETHERDESK_PUBSUB_NOTIFICATION_TOPIC" default:"ad-notification-events"`
	NotificationSubscription string `envconfig:"AETHERDESK_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
	RealtimeTopic            string `envconfig:"AETHERDESK_PUBSUB_REALTIME_TOPIC" default:"ad-realtime-events"`
	RealtimeSubscription     string `envconfig:"AETHERDESK_PUBSUB_REALTIME_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AETHERDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AETHERDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AETHERDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type StripeConfig struct {
	APIKey string `envconfig:"AETHERDESK_STRIPE_API_KEY"`
	Env    string `envconfig:"AETHERDESK_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MailConfig struct {
	APIKey      string `envconfig:"AETHERDESK_MAIL_API_KEY"`
	BaseURL     string `envconfig:"AETHERDESK_MAIL_BASE_URL"`
	DefaultFrom string `envconfig:"AETHERDESK_MAIL_FROM" default:"no-reply@aetherdesk.io"`
	OpsAddress  string `envconfig:"AETHERDESK_MAIL_OPS" default:"ops@aetherdesk.io"`
}

// AutomationConfig holds the outbound webhook endpoints for form automations.
type AutomationConfig struct {
	TicketWebhookURL  string `envconfig:"AETHERDESK_AUTOMATION_TICKET_WEBHOOK_URL"`
	ContactWebhookURL string `envconfig:"AETHERDESK_AUTOMATION_CONTACT_WEBHOOK_URL"`
	BookingWebhookURL string `envconfig:"AETHERDESK_AUTOMATION_BOOKING_WEBHOOK_URL"`
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
