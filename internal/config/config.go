package config

import (
	"fmt"
	"os"

	"github.com/inkwell-cms/inkwell-backend/pkg/locale"
	"gopkg.in/yaml.v3"
)

// Config is the engine configuration loaded from a YAML file with
// environment-variable overrides (OS env always wins).
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
}

// AppConfig holds environment and locale settings.
type AppConfig struct {
	Env           string   `yaml:"env"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// GetDSN builds the MySQL DSN
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Load reads the YAML config at path and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.App.Env = "development"
	cfg.App.DefaultLocale = "en"
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 3306

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.App.Env = envOr("APP_ENV", cfg.App.Env)
	cfg.App.DefaultLocale = envOr("APP_DEFAULT_LOCALE", cfg.App.DefaultLocale)
	cfg.Database.Host = envOr("DB_HOST", cfg.Database.Host)
	cfg.Database.User = envOr("DB_USER", cfg.Database.User)
	cfg.Database.Password = envOr("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = envOr("DB_NAME", cfg.Database.Name)

	return cfg, nil
}

// LocaleSet builds the active locale set from configuration.
func (c *Config) LocaleSet() *locale.Set {
	def := locale.Normalize(c.App.DefaultLocale)
	active := make([]locale.Locale, 0, len(c.App.Locales))
	for _, l := range c.App.Locales {
		active = append(active, locale.Normalize(l))
	}
	return locale.NewSet(def, active)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
