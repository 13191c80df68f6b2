package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig on top of the explicit tags below.
const EnvPrefix = "FRONTIER"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "FRONTIER_DB_DSN"
	EnvDBHost = "FRONTIER_DB_HOST"
	EnvDBUser = "FRONTIER_DB_USER"
	EnvDBName = "FRONTIER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Shopify      ShopifyConfig
	Proxy        ProxyConfig
	Geo          GeoConfig
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
	Env          string `envconfig:"FRONTIER_APP_ENV" required:"true"`
	Port         string `envconfig:"FRONTIER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRONTIER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRONTIER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FRONTIER_DB_DSN"`
	Driver string `envconfig:"FRONTIER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRONTIER_DB_HOST"`
	LegacyPort     int    `envconfig:"FRONTIER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRONTIER_DB_USER"`
	LegacyPassword string `envconfig:"FRONTIER_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRONTIER_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRONTIER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRONTIER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRONTIER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRONTIER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRONTIER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRONTIER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRONTIER_REDIS_ADDR"`
	Password     string        `envconfig:"FRONTIER_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRONTIER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRONTIER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRONTIER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRONTIER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRONTIER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRONTIER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ShopifyConfig holds app-proxy verification and Admin API settings.
// SharedSecret is the app's API secret used to validate proxied storefront
// requests; when it is empty, verification fails closed.
type ShopifyConfig struct {
	SharedSecret string        `envconfig:"FRONTIER_SHOPIFY_API_SECRET"`
	APIVersion   string        `envconfig:"FRONTIER_SHOPIFY_API_VERSION" default:"2024-10"`
	AdminTimeout time.Duration `envconfig:"FRONTIER_SHOPIFY_ADMIN_TIMEOUT" default:"15s"`

	// AdminBaseURL overrides the https://<shop>/admin scheme, for tests
	// and local mocks only.
	AdminBaseURL string `envconfig:"FRONTIER_SHOPIFY_ADMIN_BASE_URL"`

	// OfflineTokens maps shop domains to offline Admin API tokens as
	// "shop1.myshopify.com=token1,shop2.myshopify.com=token2". The OAuth
	// layer that provisions these tokens is outside this service.
	OfflineTokens string `envconfig:"FRONTIER_SHOPIFY_OFFLINE_TOKENS"`
}

// TokenFor resolves the offline Admin API token for a shop domain.
func (s ShopifyConfig) TokenFor(shopDomain string) string {
	for _, pair := range strings.Split(s.OfflineTokens, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), shopDomain) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

type ProxyConfig struct {
	SettingsCacheTTL time.Duration `envconfig:"FRONTIER_PROXY_SETTINGS_CACHE_TTL" default:"60s"`
	RateLimitWindow  time.Duration `envconfig:"FRONTIER_PROXY_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerShop int           `envconfig:"FRONTIER_PROXY_RATE_LIMIT_PER_SHOP" default:"120"`
}

type GeoConfig struct {
	LookupURL string        `envconfig:"FRONTIER_GEO_LOOKUP_URL" default:"https://ipapi.co/json/"`
	CacheTTL  time.Duration `envconfig:"FRONTIER_GEO_CACHE_TTL" default:"24h"`
	Timeout   time.Duration `envconfig:"FRONTIER_GEO_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FRONTIER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FRONTIER_AUTO_MIGRATE" default:"false"`
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
