package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Line         LineConfig
	OpenAI       OpenAIConfig
	Cloudinary   CloudinaryConfig
	Reminder     ReminderConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"CELLARLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"CELLARLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CELLARLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CELLARLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CELLARLINE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CELLARLINE_DB_DSN"`
	Driver string `envconfig:"CELLARLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CELLARLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"CELLARLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CELLARLINE_DB_USER"`
	LegacyPassword string `envconfig:"CELLARLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CELLARLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CELLARLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CELLARLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CELLARLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CELLARLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CELLARLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete legacy variables when
// no DSN was provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" || d.Driver == "sqlite" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN missing and legacy host/user/name incomplete")
	}
	userInfo := url.User(d.LegacyUser)
	if d.LegacyPassword != "" {
		userInfo = url.UserPassword(d.LegacyUser, d.LegacyPassword)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:     "/" + d.LegacyName,
		RawQuery: "sslmode=" + d.LegacySSLMode,
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CELLARLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CELLARLINE_REDIS_ADDR"`
	Password     string        `envconfig:"CELLARLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CELLARLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CELLARLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CELLARLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CELLARLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CELLARLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CELLARLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type LineConfig struct {
	ChannelSecret      string        `envconfig:"CELLARLINE_LINE_CHANNEL_SECRET" required:"true"`
	ChannelAccessToken string        `envconfig:"CELLARLINE_LINE_CHANNEL_ACCESS_TOKEN" required:"true"`
	ProfileEndpoint    string        `envconfig:"CELLARLINE_LINE_PROFILE_ENDPOINT" default:"https://api.line.me/v2/profile"`
	VerifyTimeout      time.Duration `envconfig:"CELLARLINE_LINE_VERIFY_TIMEOUT" default:"10s"`
	VerifyCacheTTL     time.Duration `envconfig:"CELLARLINE_LINE_VERIFY_CACHE_TTL" default:"15m"`
}

type OpenAIConfig struct {
	APIKey string `envconfig:"CELLARLINE_OPENAI_API_KEY"`
	Model  string `envconfig:"CELLARLINE_OPENAI_VISION_MODEL" default:"gpt-4o-mini"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"CELLARLINE_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"CELLARLINE_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"CELLARLINE_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"CELLARLINE_CLOUDINARY_FOLDER" default:"cellarline/labels"`
}

// ReminderConfig drives the drink-by reminder core. The timezone is an
// explicit civil timezone for all date math; it is never derived from the
// host clock.
type ReminderConfig struct {
	Timezone          string        `envconfig:"CELLARLINE_REMINDER_TIMEZONE" default:"Asia/Taipei"`
	WarningWindowDays int           `envconfig:"CELLARLINE_REMINDER_WARNING_WINDOW_DAYS" default:"7"`
	OpenedLeadDays    int           `envconfig:"CELLARLINE_REMINDER_OPENED_LEAD_DAYS" default:"3"`
	DigestItemLimit   int           `envconfig:"CELLARLINE_REMINDER_DIGEST_ITEM_LIMIT" default:"5"`
	SweepTolerance    time.Duration `envconfig:"CELLARLINE_REMINDER_SWEEP_TOLERANCE" default:"15m"`
}

// Location resolves the configured reference timezone.
func (r ReminderConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading reminder timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CELLARLINE_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"CELLARLINE_CRON_INTERVAL" default:"24h"`
	NotificationRetention int           `envconfig:"CELLARLINE_NOTIFICATION_RETENTION_DAYS" default:"30"`
}
