package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leetdoist/internal/todoist"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	Todoist   TodoistConfig
	Store     StoreConfig
	Extractor ExtractorConfig
	Browser   BrowserConfig
	Logger    LoggerConfig
}

type TodoistConfig struct {
	Endpoint string
}

type StoreConfig struct {
	Path string
}

type ExtractorConfig struct {
	Attempts int
	Interval time.Duration
}

type BrowserConfig struct {
	Headless bool
	Proxy    string
	Timeout  time.Duration
	// Bin is the browser executable; empty lets rod find or download one.
	Bin string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// Load reads configuration. Sources in increasing priority: defaults,
// config.yaml (./config, ., the user config dir, or the explicit file),
// .env, LEETDOIST_* environment variables.
func Load(file string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("leetdoist")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	cfg.Todoist.Endpoint = v.GetString("todoist.endpoint")
	cfg.Store.Path = v.GetString("store.path")
	cfg.Extractor.Attempts = v.GetInt("extractor.attempts")
	cfg.Extractor.Interval = v.GetDuration("extractor.interval")
	cfg.Browser.Headless = v.GetBool("browser.headless")
	cfg.Browser.Proxy = v.GetString("browser.proxy")
	cfg.Browser.Timeout = v.GetDuration("browser.timeout")
	cfg.Browser.Bin = v.GetString("browser.bin")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	if cfg.Store.Path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		cfg.Store.Path = filepath.Join(dir, "storage.yaml")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("todoist.endpoint", todoist.DefaultEndpoint)
	v.SetDefault("store.path", "")
	v.SetDefault("extractor.attempts", 6)
	v.SetDefault("extractor.interval", 250*time.Millisecond)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.bin", "")
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", false)
}

func (c *Config) validate() error {
	if c.Todoist.Endpoint == "" {
		return fmt.Errorf("todoist.endpoint must not be empty")
	}
	if c.Extractor.Attempts < 1 {
		return fmt.Errorf("extractor.attempts must be at least 1, got %d", c.Extractor.Attempts)
	}
	if c.Extractor.Interval < 0 {
		return fmt.Errorf("extractor.interval must not be negative")
	}
	return nil
}

// Dir is the per-user directory holding config.yaml and the credential store.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "leetdoist"), nil
}
