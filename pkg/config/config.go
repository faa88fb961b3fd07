package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Remote  RemoteConfig
	Pricing PricingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPBAG_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPBAG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPBAG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPBAG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"SHOPBAG_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SHOPBAG_DB_DSN" default:"file:shopbag.db?_pragma=foreign_keys(1)"`

	MaxOpenConns    int           `envconfig:"SHOPBAG_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SHOPBAG_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPBAG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPBAG_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"SHOPBAG_DB_AUTO_MIGRATE" default:"true"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q (expected %q or %q)", db.Driver, DBDriverSQLite, DBDriverPostgres)
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPBAG_REDIS_URL"`
	Address      string        `envconfig:"SHOPBAG_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPBAG_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPBAG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPBAG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPBAG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPBAG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPBAG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPBAG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint has been configured at all. The
// idempotency layer degrades to pass-through when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// RemoteConfig points the sync service at the upstream cart API.
type RemoteConfig struct {
	BaseURL string        `envconfig:"SHOPBAG_REMOTE_BASE_URL"`
	Timeout time.Duration `envconfig:"SHOPBAG_REMOTE_TIMEOUT" default:"10s"`
	UseMock bool          `envconfig:"SHOPBAG_REMOTE_USE_MOCK" default:"false"`
}

// PricingConfig carries the externally-owned tax and shipping policy inputs.
// The rates are injected, never hardcoded in the engine.
type PricingConfig struct {
	TaxRate               decimal.Decimal `envconfig:"SHOPBAG_PRICING_TAX_RATE" default:"0.07"`
	ShippingFlatFee       decimal.Decimal `envconfig:"SHOPBAG_SHIPPING_FLAT_FEE" default:"4.99"`
	ShippingFreeThreshold decimal.Decimal `envconfig:"SHOPBAG_SHIPPING_FREE_THRESHOLD" default:"50.00"`
}

func (p PricingConfig) validate() error {
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be within [0, 1]", EnvPricingTaxRate)
	}
	if p.ShippingFlatFee.IsNegative() {
		return fmt.Errorf("%s must be non-negative", EnvShippingFlatFee)
	}
	if p.ShippingFreeThreshold.IsNegative() {
		return fmt.Errorf("%s must be non-negative", EnvShippingFreeThreshold)
	}
	return nil
}
