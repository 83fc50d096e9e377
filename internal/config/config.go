package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider   string // "gemini" or "openai"
	GeminiAPIKey  string
	OpenAIAPIKey  string
	ChatModel     string
	ImageModel    string
	DatabaseURL   string
	HTTPPort      string
	LogLevel      string
	JWTSecret     string
	AdminPassword string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		ChatModel:     getEnv("CHAT_MODEL", ""),
		ImageModel:    getEnv("IMAGE_MODEL", "imagen-3.0-generate-002"),
		DatabaseURL:   getEnv("DATABASE_URL", "shopping_proxy.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}

	switch AppConfig.LLMProvider {
	case "gemini":
		if AppConfig.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required")
		}
	case "openai":
		if AppConfig.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
		// Product images are always generated through Gemini, even when chat
		// runs on OpenAI.
		if AppConfig.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required for image generation")
		}
	default:
		log.Fatalf("Unsupported LLM_PROVIDER: %s", AppConfig.LLMProvider)
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
