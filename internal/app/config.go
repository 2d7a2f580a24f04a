package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string          `default:"0.0.0.0:8080" usage:"API server listen address" yaml:"addr"`
	BcryptCost int             `default:"10" usage:"bcrypt cost for password hashes" flag:"bcrypt-cost" yaml:"bcrypt_cost" env:"BCRYPT_COST"`
	Storage    StorageConfig   `yaml:"storage"`
	AMQP       AMQPConfig      `yaml:"amqp"`
	RateLimit  RateLimitConfig `yaml:"rate_limit" env:"RATE_LIMIT"`
	CORS       CORSConfig      `yaml:"cors"`
	Graceful   GracefulConfig  `yaml:"graceful"`
}

// StorageConfig selects and configures the repository backend.
type StorageConfig struct {
	Driver      string `default:"postgres" usage:"Storage driver: postgres or sqlite" yaml:"driver" env:"DRIVER"`
	DatabaseURL string `usage:"PostgreSQL connection URL (SHOP_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url" yaml:"database_url" env:"DATABASE_URL"`
	SQLitePath  string `default:"shop.db" usage:"SQLite database file" flag:"sqlite-path" yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// AMQPConfig configures order event publishing. Events are dropped when URL
// is empty.
type AMQPConfig struct {
	URL      string `usage:"AMQP broker URL" flag:"amqp-url" yaml:"url" env:"URL"`
	Exchange string `default:"shop.events" usage:"Topic exchange for order events" yaml:"exchange" env:"EXCHANGE"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window" yaml:"max" env:"MAX"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration" yaml:"window" env:"WINDOW"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins" yaml:"origins" env:"ORIGINS"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials" yaml:"allow_credentials" env:"ALLOW_CREDENTIALS"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay" yaml:"readiness_delay" env:"READINESS_DELAY"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout" yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LoadConfig loads configuration from flags, environment variables and YAML
// config files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/shop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set SHOP_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path is required")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// applyPlatformDefaults maps DATABASE_URL and PORT, as provided by hosting
// platforms, onto the SHOP_ configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
