package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Consul   ConsulConfig   `mapstructure:"consul"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// IsProduction reports whether internal error details must be hidden.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type MongoDBConfig struct {
	URI              string        `mapstructure:"uri"`
	Database         string        `mapstructure:"database"`
	PoolSize         uint64        `mapstructure:"pool_size"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type RedisConfig struct {
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	SearchTTL time.Duration `mapstructure:"search_ttl"`
}

type RabbitMQConfig struct {
	URI            string        `mapstructure:"uri"`
	Exchange       string        `mapstructure:"exchange"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type ConsulConfig struct {
	Address   string `mapstructure:"address"`
	ServiceID string `mapstructure:"service_id"`
}

type UploadsConfig struct {
	Dir          string `mapstructure:"dir"`
	PublicPrefix string `mapstructure:"public_prefix"`
	MaxSize      int64  `mapstructure:"max_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]interface{}{
	"app.name":        "ithotlist-api",
	"app.environment": "development",

	"server.host":          "0.0.0.0",
	"server.port":          5000,
	"server.read_timeout":  15 * time.Second,
	"server.write_timeout": 15 * time.Second,
	"server.body_limit":    8 << 20,

	"mongodb.uri":               "mongodb://localhost:27017",
	"mongodb.database":          "ithotlist",
	"mongodb.pool_size":         100,
	"mongodb.connect_timeout":   10 * time.Second,
	"mongodb.operation_timeout": 10 * time.Second,

	"redis.address":    "",
	"redis.password":   "",
	"redis.db":         0,
	"redis.search_ttl": 30 * time.Second,

	"rabbitmq.uri":             "",
	"rabbitmq.exchange":        "ithotlist.events",
	"rabbitmq.publish_timeout": time.Second,

	"consul.address":    "",
	"consul.service_id": "",

	"uploads.dir":           "uploads",
	"uploads.public_prefix": "/uploads",
	"uploads.max_size":      5 << 20,

	"logging.level":  "info",
	"logging.format": "json",
}

// Load reads an optional .env file, an optional config.yaml from ./configs or
// the working directory, then environment variables such as MONGODB_URI or
// SERVER_PORT, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Consul.ServiceID == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "1"
		}
		cfg.Consul.ServiceID = cfg.App.Name + "-" + host
	}
	cfg.Uploads.PublicPrefix = "/" + strings.Trim(cfg.Uploads.PublicPrefix, "/")
}

func (c *Config) Validate() error {
	if c.MongoDB.URI == "" {
		return errors.New("mongodb.uri is required")
	}
	if c.MongoDB.Database == "" {
		return errors.New("mongodb.database is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Uploads.Dir == "" {
		return errors.New("uploads.dir is required")
	}
	if c.Uploads.MaxSize <= 0 {
		return errors.New("uploads.max_size must be positive")
	}
	if int64(c.Server.BodyLimit) <= c.Uploads.MaxSize {
		return fmt.Errorf("server.body_limit (%d) must exceed uploads.max_size (%d)", c.Server.BodyLimit, c.Uploads.MaxSize)
	}
	if c.MongoDB.OperationTimeout <= 0 {
		return errors.New("mongodb.operation_timeout must be positive")
	}
	return nil
}
