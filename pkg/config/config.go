package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	GRPCPort int    `yaml:"grpc_port"`
	HTTPPort int    `yaml:"http_port"`
	GRPCAddr string `yaml:"grpc_addr"`

	Postgres Postgres `yaml:"postgres"`
	Mongo    Mongo    `yaml:"mongo"`
	Redis    Redis    `yaml:"redis"`
	Auth     Auth     `yaml:"auth"`

	Checkout  Checkout  `yaml:"checkout"`
	Geocoding Geocoding `yaml:"geocoding"`
	Upload    Upload    `yaml:"upload"`
	Jobs      Jobs      `yaml:"jobs"`

	overlayErr error
}

type Postgres struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	DB   string `yaml:"db"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type Redis struct {
	URL        string        `yaml:"url"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	CartTTL    time.Duration `yaml:"cart_ttl"`
}

// Auth configures ID token verification. Secret selects HS256,
// PublicKeyFile selects RS256.
type Auth struct {
	Secret        string `yaml:"secret"`
	PublicKeyFile string `yaml:"public_key_file"`
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
}

// Checkout holds merchant defaults. Values stored in the shop document win
// over these at runtime.
type Checkout struct {
	MinOrderValue   float64       `yaml:"min_order_value"`
	DefaultRadiusKm float64       `yaml:"default_radius_km"`
	DefaultLat      float64       `yaml:"default_lat"`
	DefaultLng      float64       `yaml:"default_lng"`
	LocationTimeout time.Duration `yaml:"location_timeout"`
	GuardTTL        time.Duration `yaml:"guard_ttl"`
	Currency        string        `yaml:"currency"`
	Timezone        string        `yaml:"timezone"`
}

type Geocoding struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

type Upload struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
}

type Jobs struct {
	PendingAlertSpec string `yaml:"pending_alert_spec"`
}

func Load() Config {
	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 8081),
		GRPCAddr: getEnv("GRPC_ADDR", "localhost:8081"),
		Postgres: Postgres{
			Host: getEnv("POSTGRES_HOST", "localhost"),
			Port: getEnvInt("POSTGRES_PORT", 5432),
			User: getEnv("POSTGRES_USER", "storefront"),
			Pass: getEnv("POSTGRES_PASSWORD", ""),
			DB:   getEnv("POSTGRES_DB", "storefront"),
		},
		Mongo: Mongo{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "storefront"),
		},
		Redis: Redis{
			URL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
			SessionTTL: getEnvDuration("SESSION_TTL", 30*24*time.Hour),
			CartTTL:    getEnvDuration("CART_TTL", 30*24*time.Hour),
		},
		Auth: Auth{
			Secret:        getEnv("AUTH_TOKEN_SECRET", ""),
			PublicKeyFile: getEnv("AUTH_PUBLIC_KEY_FILE", ""),
			Issuer:        getEnv("AUTH_ISSUER", ""),
			Audience:      getEnv("AUTH_AUDIENCE", ""),
		},
		Checkout: Checkout{
			MinOrderValue:   getEnvFloat("MIN_ORDER_VALUE", 150),
			DefaultRadiusKm: getEnvFloat("DELIVERY_RADIUS_KM", 10),
			DefaultLat:      getEnvFloat("SHOP_LAT", 20.491026),
			DefaultLng:      getEnvFloat("SHOP_LNG", 77.866386),
			LocationTimeout: getEnvDuration("LOCATION_TIMEOUT", 10*time.Second),
			GuardTTL:        getEnvDuration("CHECKOUT_GUARD_TTL", 30*time.Second),
			Currency:        getEnv("CURRENCY", "INR"),
			Timezone:        getEnv("SHOP_TIMEZONE", "Asia/Kolkata"),
		},
		Geocoding: Geocoding{
			BaseURL:   getEnv("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODING_USER_AGENT", "storefront/1.0"),
		},
		Upload: Upload{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		},
		Jobs: Jobs{
			PendingAlertSpec: getEnv("PENDING_ALERT_SPEC", "@every 30s"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			// Load has no error return; Validate reports the broken file.
			cfg.overlayErr = err
		}
	}
	return cfg
}

// overlay merges a YAML file over the env-derived values. Keys absent from
// the file keep their current value.
func (c *Config) overlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports missing credentials eagerly so a misconfigured binary
// fails at boot rather than on the first request that needs them.
func (c Config) Validate() error {
	if c.overlayErr != nil {
		return c.overlayErr
	}

	var missing []string
	if c.Postgres.Pass == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.AppEnv != "dev" && c.Auth.Secret == "" && c.Auth.PublicKeyFile == "" {
		missing = append(missing, "AUTH_TOKEN_SECRET or AUTH_PUBLIC_KEY_FILE")
	}
	if c.Checkout.MinOrderValue < 0 {
		return fmt.Errorf("MIN_ORDER_VALUE must not be negative, got %v", c.Checkout.MinOrderValue)
	}
	if c.Checkout.DefaultRadiusKm <= 0 {
		return fmt.Errorf("DELIVERY_RADIUS_KM must be positive, got %v", c.Checkout.DefaultRadiusKm)
	}
	if _, err := time.LoadLocation(c.Checkout.Timezone); err != nil {
		return fmt.Errorf("SHOP_TIMEZONE: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// UploadEnabled is false when Cloudinary credentials are not configured.
// Photo upload RPCs then fail with a configuration error instead of a
// network error.
func (c Config) UploadEnabled() bool {
	return c.Upload.CloudName != "" && c.Upload.UploadPreset != ""
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Checkout.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
