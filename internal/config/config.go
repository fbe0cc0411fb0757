package config

import (
	"os"
	"strconv"
	"time"
)

const (
	TransportDirect = "direct"
	TransportProxy  = "proxy"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	ImageKit  ImageKitConfig
	AI        AIConfig
	Interview InterviewConfig
}

type ImageKitConfig struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
}

func (c ImageKitConfig) Enabled() bool {
	return c.PrivateKey != "" && c.URLEndpoint != ""
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type AIConfig struct {
	APIKey         string
	Model          string
	Transport      string
	ProxyURL       string
	TimeoutSeconds int
}

func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type InterviewConfig struct {
	MonthlyLimit       int
	SessionTTLHours    int
	SubmitGuardSeconds int
}

func (c InterviewConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c InterviewConfig) SubmitGuardTTL() time.Duration {
	return time.Duration(c.SubmitGuardSeconds) * time.Second
}

func Load() *Config {
	app := AppConfig{
		Port:     getEnv("APP_PORT", "3000"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	defaultTransport := TransportProxy
	if app.IsDevelopment() {
		defaultTransport = TransportDirect
	}

	return &Config{
		App: app,
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "interview_assistant"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "secret"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		},
		ImageKit: ImageKitConfig{
			PublicKey:   getEnv("IMAGEKIT_PUBLIC_KEY", ""),
			PrivateKey:  getEnv("IMAGEKIT_PRIVATE_KEY", ""),
			URLEndpoint: getEnv("IMAGEKIT_URL_ENDPOINT", ""),
		},
		AI: AIConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			Transport:      getEnv("AI_TRANSPORT", defaultTransport),
			ProxyURL:       getEnv("AI_PROXY_URL", "http://localhost:"+app.Port+"/api/gemini"),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 30),
		},
		Interview: InterviewConfig{
			MonthlyLimit:       getEnvAsInt("INTERVIEW_MONTHLY_LIMIT", 0),
			SessionTTLHours:    getEnvAsInt("SESSION_TTL_HOURS", 72),
			SubmitGuardSeconds: getEnvAsInt("SUBMIT_GUARD_SECONDS", 90),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
