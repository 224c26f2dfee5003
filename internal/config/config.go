package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ClusterRelay       bool // fan out through redis so several instances share rooms
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret      string
	AccessTokenTTL time.Duration
	Issuer         string
}

type ChatConfig struct {
	AllowAnonymous    bool
	MaxContentLength  int
	MaxFileSize       int64
	AllowedExtensions []string
	PreviewLength     int
	SendBufferSize    int
	MaxFrameSize      int64
	UserCacheTTL      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_FILE_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			ClusterRelay:       getEnvAsBool("CLUSTER_RELAY_ENABLED", false),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:      getEnv("JWT_SECRET", "jwt-super-secret-key"),
			AccessTokenTTL: getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", time.Hour),
			Issuer:         getEnv("JWT_ISSUER", "realtime-chat-be"),
		},
		Chat: DefaultChatConfig(),
	}
}

// DefaultChatConfig reads the chat limits, falling back to the values the
// clients were built against (5MB files, 50 rune previews).
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		AllowAnonymous:    getEnvAsBool("CHAT_ALLOW_ANONYMOUS", true),
		MaxContentLength:  getEnvAsInt("CHAT_MAX_CONTENT_LENGTH", 5000),
		MaxFileSize:       int64(getEnvAsInt("CHAT_MAX_FILE_SIZE", 5*1024*1024)),
		AllowedExtensions: getEnvAsList("CHAT_ALLOWED_EXTENSIONS", []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}),
		PreviewLength:     getEnvAsInt("CHAT_PREVIEW_LENGTH", 50),
		SendBufferSize:    getEnvAsInt("CHAT_SEND_BUFFER", 256),
		MaxFrameSize:      int64(getEnvAsInt("CHAT_MAX_FRAME_SIZE", 64*1024)),
		UserCacheTTL:      getEnvAsDuration("CHAT_USER_CACHE_TTL", 5*time.Minute),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value; extensions are normalised to
// lower case with a leading dot.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
