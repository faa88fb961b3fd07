package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.DB.Driver != DBDriverSQLite {
		t.Fatalf("expected default sqlite driver, got %q", cfg.DB.Driver)
	}

	if got := cfg.Remote.Timeout; got != 10*time.Second {
		t.Fatalf("expected remote timeout 10s, got %v", got)
	}

	if !cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.07")) {
		t.Fatalf("unexpected default tax rate %s", cfg.Pricing.TaxRate)
	}
	if !cfg.Pricing.ShippingFreeThreshold.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("unexpected free-shipping threshold %s", cfg.Pricing.ShippingFreeThreshold)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDBDriver, "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver to return an error")
	}
}

func TestLoad_RejectsTaxRateOutOfRange(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPricingTaxRate, "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected out-of-range tax rate to return an error")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "production"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

func TestRedisConfigEnabled(t *testing.T) {
	if (RedisConfig{}).Enabled() {
		t.Fatal("empty redis config should not be enabled")
	}
	if !(RedisConfig{URL: "redis://localhost:6379/0"}).Enabled() {
		t.Fatal("redis config with URL should be enabled")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAppPort, "8081")
	t.Setenv(EnvRemoteBaseURL, "https://cart.upstream.example")
}
