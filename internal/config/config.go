package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	AppName    = "Nuance"
	AppVersion = "1.0.0"
)

// DefaultExplanationLanguage is the language nuance interpretations are
// written in when nothing else is configured.
const DefaultExplanationLanguage = "한국어"

type Config struct {
	Addr      string
	DBPath    string
	DataDir   string
	StaticDir string
	LogLevel  string

	// AI provider, constructed once at startup and injected everywhere.
	AIProvider string
	AIAPIKey   string
	AIBaseURL  string
	AIModel    string

	// Generation parameters applied to every provider call.
	AITemperature    float64
	AIMaxTokens      int64
	AITimeoutSeconds int

	// Worker pool executing blocking provider calls and detached saves.
	WorkerPoolSize int
}

func Load() Config {
	addr := getenv("NUANCE_ADDR", ":8080")
	dataDir := getenv("NUANCE_DATA_DIR", "./data")
	path := os.Getenv("NUANCE_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "nuance.db")
	}
	staticDir := getenv("NUANCE_STATIC_DIR", "./static")

	return Config{
		Addr:      addr,
		DBPath:    filepath.Clean(path),
		DataDir:   filepath.Clean(dataDir),
		StaticDir: filepath.Clean(staticDir),
		LogLevel:  getenv("NUANCE_LOG_LEVEL", "info"),

		AIProvider: getenv("NUANCE_AI_PROVIDER", "openai"),
		AIAPIKey:   os.Getenv("NUANCE_AI_API_KEY"),
		AIBaseURL:  os.Getenv("NUANCE_AI_BASE_URL"),
		AIModel:    getenv("NUANCE_AI_MODEL", "gpt-4o-mini"),

		AITemperature:    getenvFloat("NUANCE_AI_TEMPERATURE", 0.3),
		AIMaxTokens:      int64(getenvInt("NUANCE_AI_MAX_TOKENS", 2048)),
		AITimeoutSeconds: getenvInt("NUANCE_AI_TIMEOUT_SECONDS", 60),

		WorkerPoolSize: getenvInt("NUANCE_WORKER_POOL_SIZE", 8),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}
