package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"9000"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	Mongo struct {
		URI      string `env:"MONGOURI"`
		Database string `env:"DB" envDefault:"dealdirect"`
	}

	JWT struct {
		Key string        `env:"JWT_KEY,notEmpty"`
		TTL time.Duration `env:"JWT_TTL" envDefault:"168h"`
	}

	Uploads struct {
		Dir           string `env:"UPLOADS_DIR" envDefault:"uploads"`
		PublicBaseURL string `env:"PUBLIC_BASE_URL"`
		MaxUploadMB   int64  `env:"MAX_UPLOAD_MB" envDefault:"32"`
		MaxImages     int    `env:"MAX_IMAGES" envDefault:"10"`
		TrustProxy    bool   `env:"TRUST_PROXY" envDefault:"true"`
	}

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Redis backs the image cleanup queue when an address is configured.
	Redis struct {
		Addr     string `env:"REDIS_ADD"`
		Password string `env:"REDIS_PASS"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		QueueKey string `env:"CLEANUP_QUEUE_KEY" envDefault:"uploads:cleanup"`
	}

	Agent struct {
		Name     string `env:"AGENT_NAME" envDefault:"Agent"`
		Email    string `env:"AGENT_EMAIL"`
		Password string `env:"AGENT_PASSWORD"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
		JSON  bool   `env:"LOG_JSON" envDefault:"true"`
	}
}

// LoadEnv reads a .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Info("No .env file loaded")
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGOURI not set in environment")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Uploads.MaxImages <= 0 {
		return fmt.Errorf("MAX_IMAGES must be positive")
	}
	return nil
}

func (c *Config) MaxUploadBytes() int64 {
	return c.Uploads.MaxUploadMB << 20
}

// AgentConfigured reports whether a bootstrap agent account should be seeded.
func (c *Config) AgentConfigured() bool {
	return c.Agent.Email != "" && c.Agent.Password != ""
}
