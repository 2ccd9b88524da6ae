package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally seeded by a .env file) with sensible defaults,
// so the CLI works out of the box with just the vendor API keys set.
type Config struct {
	// AIMLAPI (MiniMax music, Kling video)
	AIMLAPIKey        string
	AIMLAPIBaseURL    string
	AIMLAPIMusicModel string
	AIMLAPIVideoModel string

	// Google (Lyria realtime, Imagen, Veo)
	GoogleAPIKey  string
	LyriaModel    string
	LyriaEndpoint string // websocket endpoint template, %s is the API key
	ImagenModel   string
	VeoModel      string
	GoogleBaseURL string

	// Generated files land under OutputDir/<content_type>/ unless an
	// explicit --output path is given.
	OutputDir string

	// Job store. "sqlite" (default, local file) or "mysql".
	DBDriver   string
	DBPath     string // sqlite only
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Optional Redis poll-status cache. Disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional MinIO artifact mirror. Disabled when MinioEndpoint is empty.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Logging
	LogLevel string
	LogFile  string

	// serve command
	ServerAddr string

	// Polling budget for submit/poll providers.
	PollInterval int // seconds between status checks
	MaxPollTries int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	dataDir := getEnv("MEDIAFORGE_DATA_DIR", defaultDataDir())

	return &Config{
		AIMLAPIKey:        os.Getenv("AIMLAPI_API_KEY"),
		AIMLAPIBaseURL:    getEnv("AIMLAPI_BASE_URL", "https://api.aimlapi.com"),
		AIMLAPIMusicModel: getEnv("AIMLAPI_MUSIC_MODEL", "minimax-music-2.0"),
		AIMLAPIVideoModel: getEnv("AIMLAPI_VIDEO_MODEL", "kling-video/v1.6/standard"),

		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		LyriaModel:    getEnv("LYRIA_MODEL", "models/lyria-realtime-exp"),
		LyriaEndpoint: getEnv("LYRIA_ENDPOINT", "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateMusic?key=%s"),
		ImagenModel:   getEnv("IMAGEN_MODEL", "imagen-4.0-generate-001"),
		VeoModel:      getEnv("VEO_MODEL", "veo-3.0-generate-001"),
		GoogleBaseURL: getEnv("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		OutputDir: getEnv("OUTPUT_DIR", "output"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", filepath.Join(dataDir, "jobs.db")),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "mediaforge"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "mediaforge"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", true),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		ServerAddr: getEnv("SERVER_ADDR", "127.0.0.1:8090"),

		PollInterval: getEnvInt("POLL_INTERVAL_SECONDS", 10),
		MaxPollTries: getEnvInt("MAX_POLL_ATTEMPTS", 30),
	}
}

// defaultDataDir keeps the job store under the user config dir so it
// survives across working directories.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".mediaforge"
	}
	return filepath.Join(base, "mediaforge")
}
