// Package config loads server configuration from the environment. A local
// .env file is honored when present so development mirrors deployment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the server reads at startup.
type Config struct {
	Port      string
	JWTSecret string
	APISecret string

	// LLMProvider selects the streaming backend: "qwen", "gemini", or "mock".
	LLMProvider  string
	QwenAPIKey   string
	QwenBaseURL  string
	QwenModel    string
	GeminiAPIKey string
	GeminiModel  string

	ImageBaseURL      string
	TranscriptBaseURL string

	MongoURI      string
	MongoDatabase string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string

	SessionMaxAge time.Duration
}

// Load reads configuration from the environment, applying defaults where a
// variable is unset. Only the .env file is optional; missing provider keys
// surface later when the adapter they belong to is constructed.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		APISecret: getEnv("API_SECRET", "dev-secret"),

		LLMProvider:  getEnv("LLM_PROVIDER", "qwen"),
		QwenAPIKey:   os.Getenv("QWEN_API_KEY"),
		QwenBaseURL:  os.Getenv("QWEN_BASE_URL"),
		QwenModel:    os.Getenv("QWEN_MODEL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),

		ImageBaseURL:      getEnv("IMAGE_API_BASE_URL", "https://matrix-server.vercel.app"),
		TranscriptBaseURL: getEnv("TRANSCRIPT_API_BASE_URL", "https://matrix-server.vercel.app"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "matrixai"),

		ElevenLabsAPIKey:  os.Getenv("ELEVEN_LABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVEN_LABS_VOICE_ID"),

		SessionMaxAge: getDurationEnv("SESSION_MAX_AGE_MINUTES", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}
