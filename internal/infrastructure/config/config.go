// Package config loads the YAML configuration file and applies environment
// overrides for secrets. Defaults are tuned for the hosted demo store so the
// binary works out of the box.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"heyq/internal/infrastructure/env"
)

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Browser struct {
	PoolSize      int           `mapstructure:"pool_size"`
	LocateTimeout time.Duration `mapstructure:"locate_timeout"`
	NavTimeout    time.Duration `mapstructure:"nav_timeout"`
	SlowMoMs      int           `mapstructure:"slow_mo_ms"`
	NoSandbox     bool          `mapstructure:"no_sandbox"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

type Pipeline struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Retry          Retry         `mapstructure:"retry"`
}

// Credentials fill login and checkout templates. The password may be set in
// the file for the public demo store but HEYQ_PASSWORD always wins.
type Credentials struct {
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	FirstName  string `mapstructure:"first_name"`
	LastName   string `mapstructure:"last_name"`
	PostalCode string `mapstructure:"postal_code"`
}

type Advisor struct {
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	CallsPerMin float64 `mapstructure:"calls_per_min"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Server      Server      `mapstructure:"server"`
	Browser     Browser     `mapstructure:"browser"`
	Pipeline    Pipeline    `mapstructure:"pipeline"`
	Credentials Credentials `mapstructure:"credentials"`
	Advisor     Advisor     `mapstructure:"advisor"`
	Log         Log         `mapstructure:"log"`
	TraceFile   string      `mapstructure:"trace_file"`

	// Secrets resolved from the environment, never from the file.
	AdvisorAPIKey string `mapstructure:"-"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8082")
	v.SetDefault("browser.pool_size", 4)
	v.SetDefault("browser.locate_timeout", 3*time.Second)
	v.SetDefault("browser.nav_timeout", 60*time.Second)
	v.SetDefault("browser.slow_mo_ms", 0)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("pipeline.request_timeout", 2*time.Minute)
	v.SetDefault("pipeline.retry.max_attempts", 3)
	v.SetDefault("pipeline.retry.base_delay", 500*time.Millisecond)
	v.SetDefault("pipeline.retry.max_delay", 4*time.Second)
	v.SetDefault("credentials.username", "standard_user")
	v.SetDefault("credentials.password", "")
	v.SetDefault("credentials.first_name", "Hey")
	v.SetDefault("credentials.last_name", "Q")
	v.SetDefault("credentials.postal_code", "00000")
	v.SetDefault("advisor.model", "gpt-4o-mini")
	v.SetDefault("advisor.base_url", "")
	v.SetDefault("advisor.calls_per_min", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("trace_file", "reports/utterance_trace.jsonl")
}

// Load reads the config file (optional) and merges environment secrets.
func Load(path string, envc *env.Service) (Config, error) {
	v := viper.New()
	defaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if pw := envc.Get("HEYQ_PASSWORD"); pw != "" {
		cfg.Credentials.Password = pw
	}
	if user := envc.Get("HEYQ_USERNAME"); user != "" {
		cfg.Credentials.Username = user
	}
	cfg.AdvisorAPIKey = envc.Get("OPENAI_API_KEY")
	cfg.Log.Level = envc.GetOr("HEYQ_LOG_LEVEL", cfg.Log.Level)

	return cfg, nil
}
