package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env            string        `envconfig:"APP_ENV" default:"development"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	PublicBaseURL  string        `envconfig:"PUBLIC_BASE_URL" required:"true"`
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`

	// Loaded section by section so each key is matched by its full name only.
	Database  DatabaseConfig  `ignored:"true"`
	Redis     RedisConfig     `ignored:"true"`
	RabbitMQ  RabbitMQConfig  `ignored:"true"`
	MPesa     MPesaConfig     `ignored:"true"`
	Payment   PaymentConfig   `ignored:"true"`
	Reconcile ReconcileConfig `ignored:"true"`
	CheckIn   CheckInConfig   `ignored:"true"`
}

type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Name            string        `envconfig:"DB_NAME" default:"eventtribe"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnectRetries  int           `envconfig:"DB_CONNECT_RETRIES" default:"10"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RabbitMQConfig configures the booking change feed. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string `envconfig:"RABBITMQ_URL"`
	Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"eventtribe.bookings"`
}

type MPesaConfig struct {
	BaseURL        string        `envconfig:"MPESA_BASE_URL" default:"https://sandbox.safaricom.co.ke"`
	ConsumerKey    string        `envconfig:"MPESA_CONSUMER_KEY" required:"true"`
	ConsumerSecret string        `envconfig:"MPESA_CONSUMER_SECRET" required:"true"`
	ShortCode      string        `envconfig:"MPESA_BUSINESS_SHORTCODE" required:"true"`
	Passkey        string        `envconfig:"MPESA_PASSKEY" required:"true"`
	Timeout        time.Duration `envconfig:"MPESA_TIMEOUT" default:"10s"`

	CallbackToken        string   `envconfig:"MPESA_CALLBACK_TOKEN" required:"true"`
	CallbackAllowedCIDRs []string `envconfig:"MPESA_CALLBACK_ALLOWED_CIDRS"`
	CallbackTrustProxy   bool     `envconfig:"MPESA_CALLBACK_TRUST_PROXY" default:"false"`
}

type PaymentConfig struct {
	InflightTTL time.Duration `envconfig:"PAYMENT_INFLIGHT_TTL" default:"2m"`
}

type ReconcileConfig struct {
	Enabled  bool          `envconfig:"RECONCILE_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1m"`
	After    time.Duration `envconfig:"RECONCILE_AFTER" default:"3m"`
	Batch    int           `envconfig:"RECONCILE_BATCH" default:"100"`
}

type CheckInConfig struct {
	Rate  float64 `envconfig:"CHECKIN_RATE" default:"5"`
	Burst int     `envconfig:"CHECKIN_BURST" default:"10"`
}

// Load reads an optional .env file and then the process environment.
// It reports whether the .env file was found.
func Load(envFile string) (*Config, bool, error) {
	loaded := godotenv.Load(envFile) == nil

	var cfg Config
	sections := []any{
		&cfg,
		&cfg.Database,
		&cfg.Redis,
		&cfg.RabbitMQ,
		&cfg.MPesa,
		&cfg.Payment,
		&cfg.Reconcile,
		&cfg.CheckIn,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, loaded, fmt.Errorf("load config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, loaded, err
	}

	return &cfg, loaded, nil
}

func (c *Config) validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.Reconcile.Enabled && c.Reconcile.Interval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	if _, err := c.CallbackAllowlist(); err != nil {
		return err
	}
	return nil
}

// CallbackAllowlist parses MPESA_CALLBACK_ALLOWED_CIDRS. Bare addresses are
// treated as single-host prefixes.
func (c *Config) CallbackAllowlist() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.MPesa.CallbackAllowedCIDRs))
	for _, raw := range c.MPesa.CallbackAllowedCIDRs {
		if p, err := netip.ParsePrefix(raw); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MPESA_CALLBACK_ALLOWED_CIDRS entry %q", raw)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// CallbackURL is the address registered with the provider for STK results.
func (c *Config) CallbackURL() string {
	base := strings.TrimRight(c.PublicBaseURL, "/")
	return base + "/payments/mpesa/callback?token=" + url.QueryEscape(c.MPesa.CallbackToken)
}
