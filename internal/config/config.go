package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Tutor    TutorConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Deepgram     string
	ElevenLabs   string
	IngestTopic  string // Material ingestion topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-1.5-flash", "llama3"
	STTProvider       string // "deepgram"
	TTSProvider       string // "elevenlabs"
	TTSVoiceId        string
	TTSModel          string
	Temperature       float64
	MaxTokens         int
}

type TutorConfig struct {
	MemoryUpdateInterval int
	FrustrationThreshold int
	SessionTimeoutSecs   int
}

type StorageConfig struct {
	UploadDir      string
	MaxUploadBytes int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Deepgram:     getEnv("DEEPGRAM_API_KEY", ""),
			ElevenLabs:   getEnv("ELEVENLABS_API_KEY", ""),
			IngestTopic:  getEnv("INGEST_MATERIAL_TOPIC_NAME", "INGEST_MATERIAL"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
			STTProvider:       getEnv("STT_PROVIDER", "deepgram"),
			TTSProvider:       getEnv("TTS_PROVIDER", "elevenlabs"),
			TTSVoiceId:        getEnv("TTS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
			TTSModel:          getEnv("TTS_MODEL", "eleven_turbo_v2"),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 2048),
		},
		Tutor: TutorConfig{
			MemoryUpdateInterval: getEnvAsInt("MEMORY_UPDATE_INTERVAL", 5),
			FrustrationThreshold: getEnvAsInt("FRUSTRATION_THRESHOLD", 3),
			SessionTimeoutSecs:   getEnvAsInt("SESSION_TIMEOUT_SECONDS", 3600),
		},
		Storage: StorageConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
