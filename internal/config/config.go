package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var DefaultModels = []string{
	"llama-3.3_70B",
	"llama-3.1_8B⚡",
	"deepseek-v3",
	"deepseek-v3_0324",
	"qwen2.5-coder_32B",
	"llama-3.2_3B⚡",
	"qwen2.5_72B",
	"llama-3_70B⚡",
	"llama-3.1_70B",
	"gemini-1.5-flash⚡",
}

type Config struct {
	Port        string
	DatabaseURL string
	WorkerCount int
	// Размер очереди журнала генераций
	JournalBuffer int

	// Пустой GeneratorURL означает встроенный декомпозер
	GeneratorURL     string
	GeneratorTimeout time.Duration

	LLMBaseURL     string
	LLMAPIKey      string
	LLMTemperature float64

	Models       []string
	DefaultModel string

	RedisURL  string
	DedupeTTL time.Duration

	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		WorkerCount:        getEnvInt("WORKER_COUNT", 3),
		JournalBuffer:      getEnvInt("JOURNAL_BUFFER", 64),
		GeneratorURL:       getEnv("GENERATOR_URL", ""),
		GeneratorTimeout:   getEnvDuration("GENERATOR_TIMEOUT", 60*time.Second),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		LLMTemperature:     getEnvFloat("LLM_TEMPERATURE", 0.7),
		Models:             getEnvList("MODELS", DefaultModels),
		DefaultModel:       getEnv("DEFAULT_MODEL", "gemini-1.5-flash"),
		RedisURL:           getEnv("REDIS_URL", ""),
		DedupeTTL:          getEnvDuration("DEDUPE_TTL", 24*time.Hour),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8000"}),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// getEnvList reads a comma separated list, dropping blank items.
func getEnvList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
