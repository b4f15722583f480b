package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

const (
	DefaultModel       = "deepseek-r1-distill-llama-70b"
	DefaultTemperature = 0.7
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

type LLMConfig struct {
	Provider    string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type Config struct {
	Port   string
	CVPath string

	LLM LLMConfig

	GroqAPIKey    string
	GroqBaseURL   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string
	GeminiAPIKey  string

	PromptsFile string

	RedisURL   string
	HistoryTTL time.Duration

	BackendURL string
}

// Load reads configuration from the environment, picking up a .env file in
// the working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:   getEnv("PORT", "8000"),
		CVPath: getEnv("CV_PATH", "cv.docx"),
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", ProviderGroq),
			Model:       getEnv("LLM_MODEL", DefaultModel),
			Temperature: getEnvFloat("LLM_TEMPERATURE", DefaultTemperature),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 0),
		},
		GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:   getEnv("GROQ_BASE_URL", DefaultGroqBaseURL),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		PromptsFile:   getEnv("PROMPTS_FILE", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		HistoryTTL:    getEnvDuration("HISTORY_TTL", 30*time.Minute),
		BackendURL:    getEnv("BACKEND_URL", "http://localhost:8000"),
	}
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if !(c.LLM.Temperature >= 0 && c.LLM.Temperature <= 1) {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 1], got %v", c.LLM.Temperature)
	}

	switch c.LLM.Provider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable is not set")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
