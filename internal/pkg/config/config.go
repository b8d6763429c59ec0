package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string        `env:"PORT,        default=8080"`
	Env         string        `env:"ENV,         default=development"`
	JWTSecret   string        `env:"JWT_SECRET,  required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,   default=24h"`
	LogLevel    string        `env:"LOG_LEVEL,   default=info"`
	CORSOrigins []string      `env:"CORS_ORIGINS, default=https://biblioteca-frontend-bcyo.vercel.app,http://localhost:4200,http://localhost:3000"`

	Mongo    MongoConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=biblioteca"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=false"`
}

// RedisConfig points at the idempotency store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// RabbitMQConfig points at the loan event broker. An empty URL routes events
// to the application log instead.
type RabbitMQConfig struct {
	URL     string `env:"RABBITMQ_URL"`
	Queue   string `env:"RABBITMQ_QUEUE,     default=library.loan_events"`
	Workers int    `env:"LOAN_EVENT_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadMongo reads only the MongoDB settings, for tools that do not serve HTTP.
func LoadMongo(ctx context.Context) (*MongoConfig, error) {
	return loadMongo(ctx, envconfig.OsLookuper())
}

func loadMongo(ctx context.Context, l envconfig.Lookuper) (*MongoConfig, error) {
	var cfg MongoConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
