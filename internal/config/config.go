package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Ai      AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables the event mirror
	OtelEnabled        bool
	OtelEndpoint       string
}

type StorageConfig struct {
	Driver      string // "sqlite", "memory", "redis" or "postgres"
	SQLitePath  string
	RedisURL    string
	PostgresDSN string
}

type AIConfig struct {
	Enabled          bool
	LLMProvider      string // "ollama" or "huggingface"
	OllamaBaseURL    string
	HFBaseURL        string
	HFAPIKey         string
	LLMModel         string
	AutoPull         bool
	RequestTimeout   time.Duration
	MaxConcurrent    int
	DefaultModelType string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/apin-chat.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", "sqlite"),
			SQLitePath:  getEnv("SQLITE_PATH", "data/apin-chat.db"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			PostgresDSN: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			Enabled:          getEnvAsBool("AI_ENABLED", true),
			LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HFBaseURL:        getEnv("HF_BASE_URL", ""),
			HFAPIKey:         getEnv("HF_API_KEY", ""),
			LLMModel:         getEnv("LLM_MODEL", "llama3.1:8b"),
			AutoPull:         getEnvAsBool("AI_AUTO_PULL", false),
			RequestTimeout:   time.Duration(getEnvAsInt("AI_REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
			MaxConcurrent:    getEnvAsInt("AI_MAX_CONCURRENT", 1),
			DefaultModelType: getEnv("AI_DEFAULT_MODEL_TYPE", "Balanced"),
		},
	}
}

// ProviderBaseURL returns the endpoint configured for the selected LLM provider.
func (c AIConfig) ProviderBaseURL() string {
	if c.LLMProvider == "huggingface" {
		return c.HFBaseURL
	}
	return c.OllamaBaseURL
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
