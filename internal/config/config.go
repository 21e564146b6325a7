// Package config loads the service configuration.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. built-in defaults (setDefaults)
//  2. <dir>/default.{yaml,toml,json}
//  3. <dir>/<RUN_MODE>.{yaml,toml,json}   (RUN_MODE defaults to "development")
//  4. <dir>/local.{yaml,toml,json}        (not committed)
//  5. environment variables prefixed with APP_, e.g. APP_DATABASE_URL,
//     APP_SERVER_PORT, APP_TELEMETRY_ENDPOINT
//
// Every file is optional.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "APP"

// DefaultRunMode is used when RUN_MODE is unset.
const DefaultRunMode = "development"

// Config is the complete service configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Auth      AuthConfig      `mapstructure:"auth"`
	App       AppConfig       `mapstructure:"app"`
}

// DatabaseConfig describes the connection pool.
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TelemetryConfig configures trace export and logging. An empty Endpoint
// disables export.
type TelemetryConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	ServiceName string        `mapstructure:"service_name"`
	Timeout     time.Duration `mapstructure:"timeout"`
	LogLevel    string        `mapstructure:"log_level"`
	Insecure    bool          `mapstructure:"insecure"`
}

// AuthConfig enables JWT verification when JWTSecret is set. Otherwise the
// bearer token itself is the caller's identity.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

// AppConfig holds application values served to clients.
type AppConfig struct {
	Resource string `mapstructure:"resource"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "postgres://postgres:@localhost:5432")
	v.SetDefault("database.max_connections", 3)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.max_lifetime", 30*time.Minute)
	v.SetDefault("database.acquire_timeout", 3*time.Second)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "employee-service")
	v.SetDefault("telemetry.timeout", 3*time.Second)
	v.SetDefault("telemetry.log_level", "info")
	v.SetDefault("telemetry.insecure", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")

	v.SetDefault("app.resource", "Hello World")
}

// Load reads configuration from dir and the environment.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(dir)

	runMode := os.Getenv("RUN_MODE")
	if runMode == "" {
		runMode = DefaultRunMode
	}

	for _, name := range []string{"default", runMode, "local"} {
		v.SetConfigName(name)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, fmt.Errorf("config: reading %s: %w", name, err)
		}
	}

	// APP_DATABASE_URL overrides database.url, and so on. Every key has a
	// default, so AutomaticEnv sees all of them during Unmarshal.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "sqlite":
	case "":
		errs = append(errs, errors.New("database.driver must not be empty"))
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url must not be empty"))
	}
	if c.Database.MaxConnections < 1 {
		errs = append(errs, errors.New("database.max_connections must be at least 1"))
	}
	if c.Database.MinConnections < 0 || c.Database.MinConnections > c.Database.MaxConnections {
		errs = append(errs, errors.New("database.min_connections must be between 0 and max_connections"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
