package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Library  LibraryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ContextCache       string // "memory" or "redis"
	ContextCacheTTL    time.Duration
	EventsDurable      string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider        string // "ollama" or "openai"
	LLMModel           string
	OllamaBaseURL      string
	OpenAIBaseURL      string
	OpenAIAPIKey       string
	EmbeddingModel     string
	EmbeddingDimension int
	ClassifyTimeout    time.Duration
	StreamTimeout      time.Duration
}

// LibraryConfig feeds the static facts of the assistant's system prompt.
type LibraryConfig struct {
	Name    string
	Owner   string
	Timings string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ContextCache:       getEnv("CONTEXT_CACHE", "memory"),
			ContextCacheTTL:    getEnvAsDuration("CONTEXT_CACHE_TTL", time.Hour),
			EventsDurable:      getEnv("EVENTS_DURABLE", "turn-audit"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "qwen2.5:3b-instruct"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "all-minilm"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 384),
			ClassifyTimeout:    getEnvAsDuration("LLM_CLASSIFY_TIMEOUT", 15*time.Second),
			StreamTimeout:      getEnvAsDuration("LLM_STREAM_TIMEOUT", 120*time.Second),
		},
		Library: LibraryConfig{
			Name:    getEnv("LIBRARY_NAME", "Library Hub"),
			Owner:   getEnv("LIBRARY_OWNER", "Shashwat Pasari"),
			Timings: getEnv("LIBRARY_TIMINGS", "9:00 AM to 9:00 PM"),
		},
	}
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
