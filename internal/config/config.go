// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Model    ModelConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// ModelConfig selects the predictor variant and where its artifacts live.
// FallbackEnabled only applies to the single variant: with an empty Dir,
// predictions come from the trailing historical average instead of a
// service-unavailable error.
type ModelConfig struct {
	Dir               string
	Variant           string
	FallbackEnabled   bool
	HistoryWindowDays int
}

// StorageConfig points at the S3-compatible bucket holding model artifacts
// and seed CSV exports. An empty endpoint disables storage entirely.
type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	ModelPrefix string
	SeedPrefix  string
	SyncOnStart bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8000")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "inventory_health")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 60)
		viper.SetDefault("MODEL_DIR", "")
		viper.SetDefault("MODEL_VARIANT", "single")
		viper.SetDefault("MODEL_FALLBACK_ENABLED", false)
		viper.SetDefault("MODEL_HISTORY_WINDOW_DAYS", 30)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "inventory-health")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_MODEL_PREFIX", "models/")
		viper.SetDefault("STORAGE_SEED_PREFIX", "seeds/")
		viper.SetDefault("STORAGE_SYNC_ON_START", false)

		// Read from environment variables
		viper.AutomaticEnv()

		// Artifact sync needs the model directory to exist up front
		if dir := viper.GetString("MODEL_DIR"); dir != "" {
			ensureDir(dir)
		}

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Model: ModelConfig{
				Dir:               viper.GetString("MODEL_DIR"),
				Variant:           viper.GetString("MODEL_VARIANT"),
				FallbackEnabled:   viper.GetBool("MODEL_FALLBACK_ENABLED"),
				HistoryWindowDays: viper.GetInt("MODEL_HISTORY_WINDOW_DAYS"),
			},
			Storage: StorageConfig{
				Endpoint:    viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:   viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:   viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:      viper.GetString("STORAGE_BUCKET"),
				UseSSL:      viper.GetBool("STORAGE_USE_SSL"),
				ModelPrefix: viper.GetString("STORAGE_MODEL_PREFIX"),
				SeedPrefix:  viper.GetString("STORAGE_SEED_PREFIX"),
				SyncOnStart: viper.GetBool("STORAGE_SYNC_ON_START"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
