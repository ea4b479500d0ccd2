// ABOUTME: Centralized configuration for the document chat backend
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the document chat system
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	OpenAIBaseURL  string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// AWS settings
	UploadsBucket  string
	DocumentsTable string
	MetricsEnabled bool

	// Retrieval settings
	TopK     int
	MinScore float64

	// Cache and rate limit settings
	CacheSize      int
	CacheTTL       time.Duration
	ChatPerMinute  int
	IndexPerMinute int

	// Local dev settings
	DataDir    string
	ListenAddr string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		ChatModel:      getEnv("DOCCHAT_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("DOCCHAT_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:        getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		UploadsBucket:  os.Getenv("UPLOADS_BUCKET"),
		DocumentsTable: os.Getenv("DOCUMENTS_TABLE"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		TopK:           getEnvInt("RETRIEVAL_TOP_K", 5),
		MinScore:       getEnvFloat("RETRIEVAL_MIN_SCORE", 0.3),
		CacheSize:      getEnvInt("ANSWER_CACHE_SIZE", 100),
		CacheTTL:       getEnvDuration("ANSWER_CACHE_TTL", 5*time.Minute),
		ChatPerMinute:  getEnvInt("CHAT_RATE_PER_MINUTE", 20),
		IndexPerMinute: getEnvInt("INDEX_RATE_PER_MINUTE", 5),
		DataDir:        os.Getenv("DOCCHAT_DATA_DIR"),
		ListenAddr:     getEnv("DOCCHAT_LISTEN_ADDR", ":8080"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MinScore < -1 || c.MinScore > 1 {
		return fmt.Errorf("RETRIEVAL_MIN_SCORE must be -1 to 1, got %f", c.MinScore)
	}
	if c.TopK < 1 || c.TopK > 50 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be 1-50, got %d", c.TopK)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
