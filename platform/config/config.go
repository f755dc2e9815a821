// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// BlanesConfig provides settings for the remote blanes booking API.
type BlanesConfig interface {
	GetBlanesLoginURL() string
	GetBlanesBackURL() string
	GetBlanesFrontURL() string
	GetBlanesEmail() string
	GetBlanesPassword() string
}

// WhatsAppConfig provides settings for the Meta WhatsApp Cloud API.
type WhatsAppConfig interface {
	GetMetaGraphURL() string
	GetMetaAccessToken() string
	GetMetaPhoneNumberID() string
	GetWebhookVerifyToken() string
	IsWhatsAppEnabled() bool
}

// LLMConfig provides settings for the agent's chat-completions backend.
type LLMConfig interface {
	GetLLMAPIKey() string
	GetLLMBaseURL() string
	GetLLMModel() string
}

// RedisConfig provides settings for the webhook dedup store.
type RedisConfig interface {
	GetRedisURL() string
}

// EmailConfig provides SMTP settings for booking confirmation emails.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsEmailEnabled() bool
}

// Config is the concrete configuration implementing all module interfaces.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	CORSAllowAll bool
	CORSOrigins  []string

	BlanesLoginURL string
	BlanesBackURL  string
	BlanesFrontURL string
	BlanesEmail    string
	BlanesPassword string

	MetaGraphURL       string
	MetaAccessToken    string
	MetaPhoneNumberID  string
	WebhookVerifyToken string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	RedisURL string

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string
	EmailEnabled     bool
}

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetBlanesLoginURL() string { return c.BlanesLoginURL }
func (c *Config) GetBlanesBackURL() string  { return c.BlanesBackURL }
func (c *Config) GetBlanesFrontURL() string { return c.BlanesFrontURL }
func (c *Config) GetBlanesEmail() string    { return c.BlanesEmail }
func (c *Config) GetBlanesPassword() string { return c.BlanesPassword }

func (c *Config) GetMetaGraphURL() string       { return c.MetaGraphURL }
func (c *Config) GetMetaAccessToken() string    { return c.MetaAccessToken }
func (c *Config) GetMetaPhoneNumberID() string  { return c.MetaPhoneNumberID }
func (c *Config) GetWebhookVerifyToken() string { return c.WebhookVerifyToken }
func (c *Config) IsWhatsAppEnabled() bool {
	return c.MetaAccessToken != "" && c.MetaPhoneNumberID != ""
}

func (c *Config) GetLLMAPIKey() string  { return c.LLMAPIKey }
func (c *Config) GetLLMBaseURL() string { return c.LLMBaseURL }
func (c *Config) GetLLMModel() string   { return c.LLMModel }

func (c *Config) GetRedisURL() string { return c.RedisURL }

func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsEmailEnabled() bool        { return c.EmailEnabled && c.SMTPHost != "" }

const defaultBlanesAPI = "https://api.dabablane.com/api"

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiBase := strings.TrimRight(getEnv("BLANES_API_URL", defaultBlanesAPI), "/")

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		CORSAllowAll: strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),

		BlanesLoginURL: getEnv("BLANES_LOGIN_URL", apiBase+"/login"),
		BlanesBackURL:  getEnv("BLANES_BACK_URL", apiBase+"/back/v1"),
		BlanesFrontURL: getEnv("BLANES_FRONT_URL", apiBase+"/front/v1"),
		BlanesEmail:    getEnv("BLANES_API_EMAIL", ""),
		BlanesPassword: getEnv("BLANES_API_PASSWORD", ""),

		MetaGraphURL:       getEnv("META_GRAPH_URL", "https://graph.facebook.com/v19.0"),
		MetaAccessToken:    getEnv("META_ACCESS_TOKEN", ""),
		MetaPhoneNumberID:  getEnv("META_PHONE_NUMBER_ID", ""),
		WebhookVerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),

		LLMAPIKey:  getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o"),

		RedisURL: getEnv("REDIS_URL", ""),

		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "DabaChat"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailEnabled:     strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.BlanesEmail == "" || cfg.BlanesPassword == "" {
		return nil, fmt.Errorf("BLANES_API_EMAIL and BLANES_API_PASSWORD are required")
	}
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	if cfg.IsWhatsAppEnabled() && cfg.WebhookVerifyToken == "" {
		return nil, fmt.Errorf("WEBHOOK_VERIFY_TOKEN is required when WhatsApp is enabled")
	}
	if cfg.EmailEnabled && cfg.SMTPHost != "" && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
