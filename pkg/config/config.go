package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CAJAPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Sheets       SheetsConfig
	Receipt      ReceiptConfig
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
	Env          string   `envconfig:"CAJAPOS_APP_ENV" required:"true"`
	Port         string   `envconfig:"CAJAPOS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CAJAPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CAJAPOS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CAJAPOS_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAJAPOS_DB_DSN"`
	Driver string `envconfig:"CAJAPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAJAPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"CAJAPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAJAPOS_DB_USER"`
	LegacyPassword string `envconfig:"CAJAPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAJAPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAJAPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAJAPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAJAPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAJAPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAJAPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the lightweight embedded driver was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"CAJAPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAJAPOS_REDIS_ADDR"`
	Password     string        `envconfig:"CAJAPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAJAPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAJAPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAJAPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAJAPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAJAPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAJAPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CAJAPOS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CAJAPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CAJAPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CAJAPOS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CAJAPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CAJAPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CAJAPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CAJAPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CAJAPOS_ARGON_KEY_LEN" default:"32"`
}

// SheetsConfig points the sale notifier at the bookkeeping webhook
// (a Google Apps Script endpoint in the original deployment).
type SheetsConfig struct {
	WebhookURL string        `envconfig:"CAJAPOS_SHEETS_WEBHOOK_URL"`
	Timeout    time.Duration `envconfig:"CAJAPOS_SHEETS_TIMEOUT" default:"10s"`
}

// Enabled reports whether sale mirroring is configured at all.
func (s SheetsConfig) Enabled() bool {
	return strings.TrimSpace(s.WebhookURL) != ""
}

type ReceiptConfig struct {
	BusinessName string `envconfig:"CAJAPOS_RECEIPT_BUSINESS_NAME" default:"CAJA REGISTRADORA"`
	FooterLine   string `envconfig:"CAJAPOS_RECEIPT_FOOTER" default:"¡Gracias por su compra!"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAJAPOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("CAJAPOS_DB_DSN is required for the sqlite driver")
	}

	missing := []string{}
	legacyValues := map[string]string{
		"CAJAPOS_DB_HOST": db.LegacyHost,
		"CAJAPOS_DB_USER": db.LegacyUser,
		"CAJAPOS_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"CAJAPOS_DB_HOST", "CAJAPOS_DB_USER", "CAJAPOS_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either CAJAPOS_DB_DSN or %s are required", strings.Join(missing, ", "))
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
