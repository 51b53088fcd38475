package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Host string `envconfig:"HOST" default:""`
	Port int    `envconfig:"PORT" default:"3001"`

	DBPath string `envconfig:"DB_PATH" default:"urbanconnect.db"`

	AccessTokenSecret  string `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshTokenSecret string `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogDir        string `envconfig:"LOG_DIR" default:""`
	EnableLogging bool   `envconfig:"ENABLE_LOGGING" default:"true"`

	MaxFrameSize int64 `envconfig:"MAX_FRAME_SIZE" default:"4096"`
}

// Load reads .env when present, then the environment. A missing .env is
// not an error so containerized deployments can rely on real env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
