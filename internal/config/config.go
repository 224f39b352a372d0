package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	CORSOrigin    string
	LogLevel      string
	DatabaseURL   string
	MigrationsDir string
	// KV cache: REST API variant takes precedence over a Redis URL
	KVRestURL   string
	KVRestToken string
	RedisURL    string
	// Translation
	SourceLang       string
	TranslateMaxText int
	TranslateTimeout time.Duration
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	GeminiAPIKey     string
	GeminiModel      string
	// Token refresh webhook
	WebhookSecret       string
	TurnstileSecretKey  string
	TrustedProxies      string
	InstagramToken      string
	InstagramGraphURL   string
	InstagramCacheTTL   time.Duration
	VercelToken         string
	VercelProjectID     string
	VercelTeamID        string
	VercelEnvKey        string
	VercelDeployHookURL string
	// SMTP Configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	ContactTo    string
	// Mailgun takes precedence over SMTP when both are set
	MailgunDomain string
	MailgunAPIKey string
	MailgunAPIURL string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("API_ADDR", ":8080"),
		CORSOrigin:    getenv("CORS_ORIGIN", "*"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		MigrationsDir: getenv("MIGRATIONS_DIR", "./db/migrations"),

		KVRestURL:   getenv("KV_REST_API_URL", ""),
		KVRestToken: getenv("KV_REST_API_TOKEN", ""),
		RedisURL:    firstenv("REDIS_URL", "KV_URL", "REDIS_TLS_URL", "UPSTASH_REDIS_URL"),

		SourceLang:       strings.ToLower(getenv("TRANSLATE_SOURCE_LANG", "nl")),
		TranslateMaxText: getenvInt("TRANSLATE_MAX_TEXTS", 500),
		TranslateTimeout: time.Duration(getenvInt("TRANSLATE_TIMEOUT_SECONDS", 30)) * time.Second,
		OpenAIAPIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIModel:      getenv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:     getenv("GEMINI_API_KEY", ""),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		WebhookSecret:    getenv("WEBHOOK_SECRET", ""),

		TurnstileSecretKey:  getenv("TURNSTILE_SECRET_KEY", ""),
		TrustedProxies:      getenv("TRUSTED_PROXIES", ""),
		InstagramToken:      getenv("INSTAGRAM_ACCESS_TOKEN", ""),
		InstagramGraphURL:   getenv("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
		InstagramCacheTTL:   time.Duration(getenvInt("INSTAGRAM_CACHE_TTL_SECONDS", 3600)) * time.Second,
		VercelToken:         getenv("VERCEL_API_TOKEN", ""),
		VercelProjectID:     getenv("VERCEL_PROJECT_ID", ""),
		VercelTeamID:        getenv("VERCEL_TEAM_ID", ""),
		VercelEnvKey:        getenv("VERCEL_ENV_KEY", "INSTAGRAM_ACCESS_TOKEN"),
		VercelDeployHookURL: getenv("VERCEL_DEPLOY_HOOK_URL", ""),
		// SMTP - empty by default, contact notifications disabled if not configured
		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPFromName: getenv("SMTP_FROM_NAME", "Website"),
		ContactTo:    getenv("CONTACT_TO", ""),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunAPIURL: getenv("MAILGUN_API_URL", ""),
	}
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func firstenv(keys ...string) string {
	for _, key := range keys {
		if value := getenv(key, ""); value != "" {
			return value
		}
	}
	return ""
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
