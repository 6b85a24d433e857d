package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendDynamo = "dynamo"
)

// Placeholder trust configuration. Fine for local development, but real
// deployments must override both before accepting tokens.
const (
	defaultIssuer   = "https://dev.example.com/"
	defaultAudience = "movie-watchlist-api"
)

type Config struct {
	ServerPort      string
	StoreBackend    string
	MoviesFile      string
	SQLitePath      string
	DynamoEndpoint  string
	DynamoTableName string
	AWSRegion       string
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	PublicRead      bool
	DevBypassAuth   bool
	CORSAllowOrigin string
	LogLevel        slog.Level
}

func LoadConfig() (Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := Config{
		ServerPort:      envOrDefault("SERVER_PORT", "8080"),
		StoreBackend:    envOrDefault("STORE_BACKEND", BackendFile),
		MoviesFile:      envOrDefault("MOVIES_FILE", "movies.json"),
		SQLitePath:      envOrDefault("SQLITE_PATH", "movies.db"),
		DynamoEndpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoTableName: envOrDefault("DYNAMODB_TABLE_NAME", "movie-watchlist"),
		AWSRegion:       envOrDefault("AWS_REGION", "us-east-1"),
		JWTSecret:       secret,
		JWTIssuer:       envOrDefault("JWT_ISSUER", defaultIssuer),
		JWTAudience:     envOrDefault("JWT_AUDIENCE", defaultAudience),
		PublicRead:      boolEnv("PUBLIC_READ"),
		DevBypassAuth:   boolEnv("DEV_BYPASS_AUTH"),
		CORSAllowOrigin: envOrDefault("CORS_ALLOW_ORIGIN", "*"),
		LogLevel:        parseLogLevel(os.Getenv("LOG_LEVEL")),
	}

	switch cfg.StoreBackend {
	case BackendFile, BackendSQLite, BackendDynamo:
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
