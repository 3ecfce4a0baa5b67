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
	Port        string
	Env         string
	DBPath      string
	LogLevel    string
	CORSOrigins string

	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	AppConfig = cfg
}

// FromEnv reads the configuration from the environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        GetEnv("PORT", "3000"),
		Env:         GetEnv("ENV", "development"),
		DBPath:      GetEnv("DB_PATH", "./data/drone-manager.db"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:3000"),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		MinioEndpoint:  GetEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: GetEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: GetEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    GetEnv("MINIO_BUCKET", "drone-photos"),
	}

	ttl, err := time.ParseDuration(GetEnv("SESSION_TTL", "720h"))
	if err != nil {
		return nil, &EnvError{Key: "SESSION_TTL", Err: err}
	}
	cfg.SessionTTL = ttl

	useSSL, err := strconv.ParseBool(GetEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, &EnvError{Key: "MINIO_USE_SSL", Err: err}
	}
	cfg.MinioUseSSL = useSSL

	if cfg.MinioEndpoint != "" && (cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return nil, &EnvError{Key: "MINIO_ACCESS_KEY", Err: errMissingCredentials}
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
