package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	LLM      LLMConfig
	Match    MatchConfig
	Upload   UploadConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// LLMConfig points both the narrative analyzer and the chat assistant at an
// OpenAI-compatible chat-completions endpoint, and the embedding engine at
// an embeddings endpoint.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	AnalysisModel  string
	ChatModel      string
	EmbeddingModel string
	RequestTimeout time.Duration
}

// MatchConfig bounds the matching run. The classification thresholds are
// fixed constants in the match service, not configuration.
type MatchConfig struct {
	TopK            int
	MaxAnalysis     int
	Workers         int
	AnalysisEnabled bool
}

type UploadConfig struct {
	Dir string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	llmTimeout, _ := strconv.Atoi(getEnv("LLM_REQUEST_TIMEOUT", "45"))
	topK, _ := strconv.Atoi(getEnv("MATCH_TOP_K", "1"))
	maxAnalysis, _ := strconv.Atoi(getEnv("MATCH_MAX_ANALYSIS", "3"))
	workers, _ := strconv.Atoi(getEnv("MATCH_WORKERS", "4"))
	analysisEnabled := getEnv("MATCH_ANALYSIS_ENABLED", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "clausematch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		LLM: LLMConfig{
			APIKey:         getEnv("LLM_API_KEY", ""),
			BaseURL:        getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			AnalysisModel:  getEnv("LLM_ANALYSIS_MODEL", "llama3-70b-8192"),
			ChatModel:      getEnv("LLM_CHAT_MODEL", "llama3-8b-8192"),
			EmbeddingModel: getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			RequestTimeout: time.Duration(llmTimeout) * time.Second,
		},
		Match: MatchConfig{
			TopK:            topK,
			MaxAnalysis:     maxAnalysis,
			Workers:         workers,
			AnalysisEnabled: analysisEnabled,
		},
		Upload: UploadConfig{
			Dir: getEnv("UPLOAD_DIR", "uploads"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
