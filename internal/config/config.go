package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	AppName    = "Zettel"
	AppVersion = "0.1.0"
)

// Config is the process configuration read from ZETTEL_* environment variables.
type Config struct {
	AppID       string `env:"APP_ID" envDefault:"com.jboca37.zettel"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	JSONLogs    bool   `env:"JSON_LOGS"`
	DataDir     string `env:"DATA_DIR"`
	WindowsFile string `env:"WINDOWS_FILE"`
	HelpURL     string `env:"HELP_URL" envDefault:"https://github.com/jboca37/Zettel"`
}

const envPrefix = "ZETTEL_"

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(env.Options{Prefix: envPrefix})
}

// LoadFrom reads the configuration from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Prefix: envPrefix, Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	return cfg, nil
}
