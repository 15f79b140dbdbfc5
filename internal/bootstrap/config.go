package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

type Config struct {
	ServerPort       string `mapstructure:"SERVER_PORT"`
	StoreBackend     string `mapstructure:"STORE_BACKEND"`
	MongoUri         string `mapstructure:"MONGO_URI"`
	MongoDatabase    string `mapstructure:"MONGO_DATABASE"`
	RedisUrl         string `mapstructure:"REDIS_URL"`
	DatabaseUrl      string `mapstructure:"DATABASE_URL"`
	IsLocalCors      bool   `mapstructure:"LOCAL_CORS"`
	MandatoryCapture bool   `mapstructure:"MANDATORY_CAPTURE"`
	PollIntervalMs   int    `mapstructure:"POLL_INTERVAL_MS"`
	PageLimitMatches int    `mapstructure:"PAGE_LIMIT_MATCHES"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":        "8080",
	"STORE_BACKEND":      BackendMemory,
	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DATABASE":     "checkers",
	"REDIS_URL":          "localhost:6379",
	"DATABASE_URL":       "",
	"LOCAL_CORS":         false,
	"MANDATORY_CAPTURE":  false,
	"POLL_INTERVAL_MS":   2000,
	"PAGE_LIMIT_MATCHES": 20,
	"LOG_LEVEL":          "info",
}

// Setup loads configuration from defaults, the optional env file at cfgPath,
// the process environment and, when flags is non-nil, the --port flag.
// A missing env file is not an error.
func Setup(cfgPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	if flags != nil {
		if port := flags.Lookup("port"); port != nil {
			if err := v.BindPFlag("SERVER_PORT", port); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT (must be between 1-65535 inclusive): %q", c.ServerPort)
	}
	switch c.StoreBackend {
	case BackendMemory, BackendMongo, BackendRedis:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MS must be positive, got %d", c.PollIntervalMs)
	}
	if c.PageLimitMatches <= 0 {
		return fmt.Errorf("PAGE_LIMIT_MATCHES must be positive, got %d", c.PageLimitMatches)
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) Addr() string {
	return ":" + c.ServerPort
}
