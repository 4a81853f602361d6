// Package config loads billinghub settings from config files, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Backend       BackendConfig       `mapstructure:"backend"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Retention     RetentionConfig     `mapstructure:"retention"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig points at the service that talks to the vendors.
type BackendConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

type CacheConfig struct {
	Driver string        `mapstructure:"driver"` // memory, redis
	TTL    time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, mysql, sqlite
	DSN    string `mapstructure:"dsn"`
}

type ObservabilityConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"` // json, console
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPProtocol string `mapstructure:"otlp_protocol"` // http, grpc
}

// RetentionConfig controls the audit log pruning job. AuditDays <= 0
// disables it.
type RetentionConfig struct {
	AuditDays int           `mapstructure:"audit_days"`
	Interval  time.Duration `mapstructure:"interval"`
}

// Loader keeps the viper instance around so callers can watch for changes.
type Loader struct {
	v *viper.Viper
}

func NewLoader(configFile string) *Loader {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/billinghub")
	}

	v.SetEnvPrefix("BILLINGHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{v: v}
}

func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch calls fn with the re-read configuration whenever the file changes.
// Invalid edits are reported through onErr and otherwise ignored.
func (l *Loader) Watch(fn func(Config), onErr func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.base_url is required")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache driver %q", c.Cache.Driver)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func envConfigFile() string {
	_ = godotenv.Load()
	return strings.TrimSpace(os.Getenv("BILLINGHUB_CONFIG"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.mode", "release")

	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.rate_limit", 20)
	v.SetDefault("backend.burst", 10)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "billinghub.db")

	v.SetDefault("observability.service_name", "billinghub")
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
	v.SetDefault("observability.otlp_protocol", "http")

	v.SetDefault("retention.audit_days", 90)
	v.SetDefault("retention.interval", "1h")
}
