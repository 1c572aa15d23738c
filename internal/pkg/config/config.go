package config

import (
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config carries every process setting. Defaults and environment
// variables (prefix PORTAL) come first via conf; an optional yaml file
// overlays them when present, so deployments can ship a config.yaml.
type Config struct {
	ConfigFile     string        `conf:"default:config.yaml,flag:config" yaml:"-"`
	Address        string        `conf:"default::8080" yaml:"address"`
	DataDir        string        `conf:"default:./data" yaml:"data_dir"`
	Timezone       string        `conf:"default:Asia/Kolkata" yaml:"timezone"`
	JWTKey         string        `conf:"noprint" yaml:"jwt_key"`
	TokenTTL       time.Duration `conf:"default:12h" yaml:"token_ttl"`
	RedisAddr      string        `yaml:"redis_addr"`
	RetryAttempts  int           `conf:"default:3" yaml:"retry_attempts"`
	RetryBackoff   time.Duration `conf:"default:1s" yaml:"retry_backoff"`
	AllowedOrigins string        `conf:"default:http://localhost:3000" yaml:"allowed_origins"`
	NominatimURL   string        `conf:"default:https://nominatim.openstreetmap.org" yaml:"nominatim_url"`
}

func NewConfig(args []string) (*Config, error) {
	var c Config

	if err := conf.Parse(args, "PORTAL", &c); err != nil {
		return nil, err
	}

	if raw, err := os.ReadFile(c.ConfigFile); err == nil {
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", c.ConfigFile)
		}
	}

	if c.JWTKey == "" {
		return nil, errors.New("missing required jwt key configuration")
	}
	if c.DataDir == "" {
		return nil, errors.New("missing required data directory configuration")
	}

	return &c, nil
}
