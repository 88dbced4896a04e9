package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
	StoreDriverMySQL  = "mysql"
)

type Config struct {
	AppPort    string `env:"PORT"`
	LegacyPort string `env:"APP_PORT"`
	AppName    string `env:"APP_NAME" envDefault:"todo-api"`
	AppVersion string `env:"APP_VERSION" envDefault:"dev"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"`
	DataPath    string `env:"DATA_PATH" envDefault:"data/tasks.json"`
	StrictRead  bool   `env:"STORE_STRICT_READ" envDefault:"false"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/tasks.db"`

	DbHost     string `env:"MYSQL_HOST" envDefault:"db"`
	DbPort     string `env:"MYSQL_PORT" envDefault:"3306"`
	DbUser     string `env:"MYSQL_USER" envDefault:"todo"`
	DbPassword string `env:"MYSQL_PASSWORD" envDefault:"todo"`
	DbName     string `env:"MYSQL_DATABASE" envDefault:"todo"`
	DbParams   string `env:"MYSQL_PARAMS" envDefault:"parseTime=true&multiStatements=true"`

	RedisAddr string        `env:"REDIS_ADDR"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	TranslationFolder string   `env:"TRANSLATION_FOLDER" envDefault:"pkg/translator/translation"`
	TrustedProxies    []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

const defaultPort = "4000"

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.AppPort == "" {
		cfg.AppPort = cfg.LegacyPort
	}
	if cfg.AppPort == "" {
		cfg.AppPort = defaultPort
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.TrustedProxies = cleanList(cfg.TrustedProxies)

	switch cfg.StoreDriver {
	case StoreDriverFile, StoreDriverSQLite, StoreDriverMySQL:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
