package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName string          `mapstructure:"service_name"`
	Log         LogConfig       `mapstructure:"log"`
	HTTP        HTTPConfig      `mapstructure:"http"`
	Store       StoreConfig     `mapstructure:"store"`
	Mongo       MongoConfig     `mapstructure:"mongo"`
	Postgres    PostgresConfig  `mapstructure:"postgres"`
	Redis       RedisConfig     `mapstructure:"redis"`
	NATS        NATSConfig      `mapstructure:"nats"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Disposal    DisposalConfig  `mapstructure:"disposal"`
	Stats       StatsConfig     `mapstructure:"stats"`
}

// LogConfig is read before anything else so the logger can be built from it.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output_file"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type PostgresConfig struct {
	DSN            string `mapstructure:"dsn"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	ConnectRetries int    `mapstructure:"connect_retries"`
}

// RedisConfig enables the listing cache when Address is set.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// NATSConfig enables domain events when URL is set.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// TelemetryConfig controls tracing export and the /metrics endpoint.
type TelemetryConfig struct {
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	TraceSampleRate float64 `mapstructure:"trace_sample_rate"`
	MetricsEnabled  bool    `mapstructure:"metrics_enabled"`
}

// DisposalConfig points at a knowledge base file; empty means the embedded one.
type DisposalConfig struct {
	KnowledgeBasePath string `mapstructure:"knowledge_base_path"`
}

// StatsConfig overrides the per-category weight estimates, in kilograms.
type StatsConfig struct {
	CategoryWeightsKg map[string]float64 `mapstructure:"category_weights_kg"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "reusehub")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "stdout")

	v.SetDefault("http.port", "8001")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("store.driver", StoreMemory)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.username", "")
	v.SetDefault("mongo.password", "")
	v.SetDefault("mongo.database", "reusedb")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.min_pool_size", 0)
	v.SetDefault("mongo.max_pool_size", 100)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.connect_retries", 5)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "1h")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "reusehub")
	v.SetDefault("nats.connect_timeout", "5s")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.trace_sample_rate", 1.0)
	v.SetDefault("telemetry.metrics_enabled", true)

	v.SetDefault("disposal.knowledge_base_path", "")
}

// LoadConfig reads defaults, then the YAML file at path (if it exists), then
// environment variables such as MONGO_URI or HTTP_PORT, which win.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			if fi.IsDir() {
				v.AddConfigPath(path)
				v.SetConfigName("config")
				v.SetConfigType("yaml")
			} else {
				v.SetConfigFile(path)
			}
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, fmt.Errorf("read config %s: %w", path, err)
				}
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreMongo:
		if c.Mongo.URI == "" {
			return errors.New("config: mongo.uri is required when store.driver is mongo")
		}
		if c.Mongo.Database == "" {
			return errors.New("config: mongo.database is required when store.driver is mongo")
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required when store.driver is postgres")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.HTTP.Port == "" {
		return errors.New("config: http.port is required")
	}
	if r := c.Telemetry.TraceSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("config: telemetry.trace_sample_rate must be within [0, 1], got %v", r)
	}
	for category, w := range c.Stats.CategoryWeightsKg {
		if w < 0 {
			return fmt.Errorf("config: negative weight for category %q", category)
		}
	}
	return nil
}
