package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	Personalize PersonalizeConfig
	Catalog     CatalogConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	// empty host disables the profile cache
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	ProfileTTL    time.Duration
}

type PersonalizeConfig struct {
	HalfLife        time.Duration
	GlobalDecay     float64
	ExplorationRate float64
	// "sync" or "async"
	PersistMode   string
	RetryInterval time.Duration
}

type CatalogConfig struct {
	Timeout time.Duration
	Limit   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Styl Personalization API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "styl"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0, &errs),
			ProfileTTL:    getDuration("REDIS_PROFILE_TTL", 24*time.Hour, &errs),
		},
		Personalize: PersonalizeConfig{
			HalfLife:        getDuration("PERSONALIZE_HALF_LIFE", 30*time.Minute, &errs),
			GlobalDecay:     getFloat("PERSONALIZE_GLOBAL_DECAY", 0.995, &errs),
			ExplorationRate: getFloat("PERSONALIZE_EXPLORATION_RATE", 0.15, &errs),
			PersistMode:     getEnv("PERSONALIZE_PERSIST_MODE", "sync"),
			RetryInterval:   getDuration("PERSONALIZE_PERSIST_RETRY_INTERVAL", 5*time.Second, &errs),
		},
		Catalog: CatalogConfig{
			Timeout: getDuration("CATALOG_TIMEOUT", 2*time.Second, &errs),
			Limit:   getInt("CATALOG_LIMIT", 200, &errs),
		},
	}

	if cfg.JWT.SecretKey == "" {
		errs = append(errs, errors.New("missing jwt secret"))
	}

	if cfg.Database.Password == "" {
		errs = append(errs, errors.New("missing database password"))
	}

	if d := cfg.Personalize.GlobalDecay; d <= 0 || d > 1 {
		errs = append(errs, fmt.Errorf("PERSONALIZE_GLOBAL_DECAY must be in (0, 1], got %v", d))
	}

	if r := cfg.Personalize.ExplorationRate; r <= 0 || r >= 1 {
		errs = append(errs, fmt.Errorf("PERSONALIZE_EXPLORATION_RATE must be in (0, 1), got %v", r))
	}

	if m := cfg.Personalize.PersistMode; m != "sync" && m != "async" {
		errs = append(errs, fmt.Errorf("PERSONALIZE_PERSIST_MODE must be sync or async, got %q", m))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int, errs *[]error) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return n
}

func getFloat(key string, defaultVal float64, errs *[]error) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return f
}

func getDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return d
}
