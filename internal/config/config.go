package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates the service configuration.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Redis  RedisConfig
	Upload UploadConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI:     ai,
		Redis:  loadRedisConfig(),
		Upload: loadUploadConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the generation upstream.
type AIConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	HistoryLimit int
	Timeout      time.Duration
}

// Enabled reports whether the generation credential is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

func loadAIConfig() (AIConfig, error) {
	historyLimit := 5
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override >= 1 {
		historyLimit = *override
	}

	timeout := 15 * time.Second
	if override, err := parseOptionalIntEnv("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override >= 1 {
		timeout = time.Duration(*override) * time.Second
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:        getEnvOrDefault("AI_MODEL", "gemma-3-4b-it"),
		BaseURL:      getEnvOrDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		HistoryLimit: historyLimit,
		Timeout:      timeout,
	}, nil
}

// RedisConfig describes the document store connection.
type RedisConfig struct {
	URL string
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{URL: getEnvOrDefault("REDIS_URL", "redis://localhost:6379")}
}

// UploadConfig describes where inline images land and how they are served.
type UploadConfig struct {
	Dir     string
	BaseURL string
}

func loadUploadConfig() UploadConfig {
	return UploadConfig{
		Dir:     getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		BaseURL: getEnvOrDefault("UPLOAD_BASE_URL", "/uploads"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
