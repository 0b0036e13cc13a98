package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - all environment-driven settings in one place
type Config struct {
	// Server
	Port string

	// OpenAI Images API
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	UpstreamTimeout time.Duration

	// Gemini (prompt planner)
	GeminiAPIKey       string
	PlannerModel       string
	PlannerTemperature float32

	// Supabase
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string

	// Redis (planner cache)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool
}

var globalConfig *Config

// LoadConfig - load .env (if present) and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	useTLS := false
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// 150s covers how long gpt-image-1 can take on a hard prompt
	timeoutSec := 150
	if timeoutStr := os.Getenv("UPSTREAM_TIMEOUT_SECONDS"); timeoutStr != "" {
		if parsed, err := strconv.Atoi(timeoutStr); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	temperature := float32(0.2)
	if tempStr := os.Getenv("PLANNER_TEMPERATURE"); tempStr != "" {
		if parsed, err := strconv.ParseFloat(tempStr, 32); err == nil {
			temperature = float32(parsed)
		}
	}

	globalConfig = &Config{
		Port: getEnv("PORT", "8080"),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:     getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		UpstreamTimeout: time.Duration(timeoutSec) * time.Second,

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		PlannerModel:       getEnv("PLANNER_MODEL", "gemini-1.5-flash"),
		PlannerTemperature: temperature,

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBaseURL: getEnv("SUPABASE_STORAGE_BASE_URL", ""),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	// OPENAI_API_KEY is checked at request time so the gateway can report a
	// missing credential per request instead of refusing to boot
	if globalConfig.OpenAIAPIKey == "" {
		log.Println("⚠️  OPENAI_API_KEY not set - generation requests will fail")
	}
	if globalConfig.GeminiAPIKey == "" {
		log.Println("⚠️  GEMINI_API_KEY not set - prompt planner disabled")
	}
	if globalConfig.RedisHost == "" {
		log.Println("⚠️  REDIS_HOST not set - planner cache disabled")
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   OpenAI: %s (model: %s, timeout: %s)", globalConfig.OpenAIBaseURL, globalConfig.OpenAIModel, globalConfig.UpstreamTimeout)
	log.Printf("   Supabase: %s", globalConfig.SupabaseURL)
	log.Printf("   Planner: %s", globalConfig.PlannerModel)

	return globalConfig, nil
}

// GetConfig - fetch the loaded configuration
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - required environment variables
func (c *Config) validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	return nil
}

// getEnv - environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis connection string
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
