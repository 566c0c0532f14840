// Package config loads the service configuration from the environment.
//
// Variables use the SWIFT_ prefix and a double underscore for nesting, so
// SWIFT_SERVER__PORT maps to server.port and SWIFT_AUTH__ACCESS_TOKEN_SECRET
// to auth.access_token_secret. A .env file in the working directory is read
// first when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SWIFT_"

// listKeys are read as comma separated lists.
var listKeys = map[string]struct{}{
	"server.cors_allowed_origins": {},
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Primary       PrimaryConfig       `koanf:"primary"`
	Server        ServerConfig        `koanf:"server"`
	Store         StoreConfig         `koanf:"store"`
	Mongo         MongoConfig         `koanf:"mongo"`
	Postgres      PostgresConfig      `koanf:"postgres"`
	Auth          AuthConfig          `koanf:"auth"`
	Redis         RedisConfig         `koanf:"redis"`
	Email         EmailConfig         `koanf:"email"`
	Stripe        StripeConfig        `koanf:"stripe"`
	Storage       StorageConfig       `koanf:"storage"`
	Observability ObservabilityConfig `koanf:"observability"`
	Log           LogConfig           `koanf:"log"`
}

type PrimaryConfig struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

type ServerConfig struct {
	Port               string        `koanf:"port" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins" validate:"required,min=1"`
	BaseURL            string        `koanf:"base_url" validate:"required,url"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=mongo postgres"`
}

// MongoConfig accepts either a full URI or the user/password/host triple the
// hosted cluster hands out.
type MongoConfig struct {
	URI      string        `koanf:"uri"`
	User     string        `koanf:"user"`
	Password string        `koanf:"password"`
	Host     string        `koanf:"host"`
	Database string        `koanf:"database" validate:"required"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type PostgresConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type AuthConfig struct {
	AccessTokenSecret string        `koanf:"access_token_secret" validate:"required"`
	TokenTTL          time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

// RedisConfig is optional. Without a URL, jobs run in-process and parcel
// events stay local to this instance.
type RedisConfig struct {
	URL string `koanf:"url"`
}

type EmailConfig struct {
	ResendAPIKey  string `koanf:"resend_api_key"`
	SendingDomain string `koanf:"sending_domain"`
	FromName      string `koanf:"from_name"`
}

type StripeConfig struct {
	SecretKey string `koanf:"secret_key"`
}

type StorageConfig struct {
	S3Bucket  string `koanf:"s3_bucket"`
	AWSRegion string `koanf:"aws_region"`
	UploadDir string `koanf:"upload_dir" validate:"required"`
}

type ObservabilityConfig struct {
	NewRelicLicenseKey string `koanf:"new_relic_license_key"`
	AppName            string `koanf:"app_name"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty"`
}

// Default returns the configuration used for every key the environment
// leaves unset.
func Default() *Config {
	return &Config{
		Primary: PrimaryConfig{Env: "development"},
		Server: ServerConfig{
			Port:               "5000",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			IdleTimeout:        60 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			BaseURL:            "http://localhost:5000",
		},
		Store: StoreConfig{Driver: DriverMongo},
		Mongo: MongoConfig{
			Database: "swiftParcelDB",
			Timeout:  10 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns:    100,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
		},
		Auth:          AuthConfig{TokenTTL: 12 * time.Hour},
		Email:         EmailConfig{FromName: "SwiftParcel"},
		Storage:       StorageConfig{UploadDir: "./uploads"},
		Observability: ObservabilityConfig{AppName: "swiftparcel"},
		Log:           LogConfig{Level: "info"},
	}
}

// Load reads .env (if any) and the process environment on top of Default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".")
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks field tags and the store-specific requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" && (c.Mongo.User == "" || c.Mongo.Password == "" || c.Mongo.Host == "") {
			return errors.New("config: mongo store needs mongo.uri or mongo.user, mongo.password and mongo.host")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres store needs postgres.dsn")
		}
	}
	return nil
}

// ConnectionURI returns the configured connection string, building an SRV URI from the
// credential triple when no explicit URI is set.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(m.User, m.Password),
		Host:     m.Host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}
