package config

// EnvPrefix is passed to envconfig; the explicit tags above already carry it.
const EnvPrefix = "shopbag"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

// Environment variable names referenced outside the struct tags.
const (
	EnvAppEnv                = "SHOPBAG_APP_ENV"
	EnvAppPort               = "SHOPBAG_APP_PORT"
	EnvDBDSN                 = "SHOPBAG_DB_DSN"
	EnvDBDriver              = "SHOPBAG_DB_DRIVER"
	EnvRedisURL              = "SHOPBAG_REDIS_URL"
	EnvRemoteBaseURL         = "SHOPBAG_REMOTE_BASE_URL"
	EnvRemoteUseMock         = "SHOPBAG_REMOTE_USE_MOCK"
	EnvPricingTaxRate        = "SHOPBAG_PRICING_TAX_RATE"
	EnvShippingFlatFee       = "SHOPBAG_SHIPPING_FLAT_FEE"
	EnvShippingFreeThreshold = "SHOPBAG_SHIPPING_FREE_THRESHOLD"
)
