// File: /config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret is used when no secret is configured outside production.
const DevJWTSecret = "zyncchat-dev-secret"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Email    EmailConfig    `mapstructure:"email"`
	Chat     ChatConfig     `mapstructure:"chat"`
	AI       AIConfig       `mapstructure:"ai"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Env             string        `mapstructure:"env"` // development | production | test
	Debug           bool          `mapstructure:"debug"`
	ClientURL       string        `mapstructure:"client_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver  string        `mapstructure:"driver"` // sqlite | mysql | postgres
	URL     string        `mapstructure:"url"`
	MaxOpen int           `mapstructure:"max_open"`
	MaxIdle int           `mapstructure:"max_idle"`
	MaxLife time.Duration `mapstructure:"max_life"`
	Seed    bool          `mapstructure:"seed"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
	ResetTokenTTL      time.Duration `mapstructure:"reset_token_ttl"`
}

// Email Configuration
type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromEmail    string `mapstructure:"from_email"`
	FromName     string `mapstructure:"from_name"`
}

// ChatConfig holds the hosted chat vendor credentials.
type ChatConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

func (c ChatConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// AIConfig holds credentials and endpoints for every AI vendor the proxies talk to.
type AIConfig struct {
	HFToken           string `mapstructure:"hf_token"`
	HFRouterURL       string `mapstructure:"hf_router_url"`
	HFChatModel       string `mapstructure:"hf_chat_model"`
	HuggingFaceAPIKey string `mapstructure:"huggingface_api_key"`
	HFInferenceURL    string `mapstructure:"hf_inference_url"`

	GoogleAPIKey  string `mapstructure:"google_api_key"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiBaseURL string `mapstructure:"gemini_base_url"`
	GeminiModel   string `mapstructure:"gemini_model"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	WhisperModel  string `mapstructure:"whisper_model"`

	VoiceRSSAPIKey string `mapstructure:"voicerss_api_key"`
	VoiceRSSURL    string `mapstructure:"voicerss_url"`

	ProjectID       string `mapstructure:"project_id"`
	Location        string `mapstructure:"location"`
	CredentialsFile string `mapstructure:"credentials_file"`
	VertexBaseURL   string `mapstructure:"vertex_base_url"`
	TutorModel      string `mapstructure:"tutor_model"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	STTTimeout     time.Duration `mapstructure:"stt_timeout"`
	MaxAudioBytes  int64         `mapstructure:"max_audio_bytes"`
}

type JobsConfig struct {
	ReconcileEnabled  bool   `mapstructure:"reconcile_enabled"`
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Env, "development")
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// AllowedOrigins splits the comma separated client URL list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	return origins
}

// Load reads .env (when present), an optional config file at path and the
// process environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", file, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.client_url", "http://localhost:5173")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "zyncchat.db")
	v.SetDefault("database.max_open", 25)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("database.seed", false)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.local_gc_interval", "1m")

	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.token_ttl", "168h")
	v.SetDefault("security.rate_limit_per_minute", 120)
	v.SetDefault("security.rate_limit_burst", 30)
	v.SetDefault("security.reset_token_ttl", "10m")

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 2525)
	v.SetDefault("email.smtp_username", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_email", "noreply@zyncchat.app")
	v.SetDefault("email.from_name", "ZyncChat Support")

	v.SetDefault("chat.api_key", "")
	v.SetDefault("chat.api_secret", "")
	v.SetDefault("chat.base_url", "https://chat.stream-io-api.com")

	v.SetDefault("ai.hf_token", "")
	v.SetDefault("ai.hf_router_url", "https://router.huggingface.co/v1")
	v.SetDefault("ai.hf_chat_model", "openai/gpt-oss-120b:fireworks-ai")
	v.SetDefault("ai.huggingface_api_key", "")
	v.SetDefault("ai.hf_inference_url", "https://api-inference.huggingface.co")
	v.SetDefault("ai.google_api_key", "")
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.gemini_model", "gemini-1.5-flash")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.whisper_model", "whisper-1")
	v.SetDefault("ai.voicerss_api_key", "")
	v.SetDefault("ai.voicerss_url", "https://api.voicerss.org")
	v.SetDefault("ai.project_id", "")
	v.SetDefault("ai.location", "us-central1")
	v.SetDefault("ai.credentials_file", "")
	v.SetDefault("ai.vertex_base_url", "")
	v.SetDefault("ai.tutor_model", "text-bison@001")
	v.SetDefault("ai.request_timeout", "30s")
	v.SetDefault("ai.stt_timeout", "120s")
	v.SetDefault("ai.max_audio_bytes", 25*1024*1024)

	v.SetDefault("jobs.reconcile_enabled", true)
	v.SetDefault("jobs.reconcile_schedule", "@every 1h")
}

// bindEnv maps config keys onto the variable names used by existing deployments.
func bindEnv(v *viper.Viper) {
	bindings := map[string][]string{
		"server.port":                    {"PORT"},
		"server.env":                     {"APP_ENV", "NODE_ENV"},
		"server.debug":                   {"DEBUG"},
		"server.client_url":              {"CLIENT_URL"},
		"database.driver":                {"DATABASE_DRIVER"},
		"database.url":                   {"DATABASE_URL"},
		"database.seed":                  {"DATABASE_SEED"},
		"cache.redis_addr":               {"REDIS_ADDR"},
		"cache.redis_password":           {"REDIS_PASSWORD"},
		"cache.redis_db":                 {"REDIS_DB"},
		"security.jwt_secret":            {"JWT_SECRET", "JWT_SECRET_KEY"},
		"security.token_ttl":             {"JWT_TTL"},
		"security.rate_limit_per_minute": {"RATE_LIMIT_PER_MINUTE"},
		"security.rate_limit_burst":      {"RATE_LIMIT_BURST"},
		"email.smtp_host":                {"SMTP_HOST"},
		"email.smtp_port":                {"SMTP_PORT"},
		"email.smtp_username":            {"SMTP_USERNAME", "EMAIL_USER"},
		"email.smtp_password":            {"SMTP_PASSWORD", "EMAIL_PASS"},
		"email.from_email":               {"FROM_EMAIL"},
		"email.from_name":                {"FROM_NAME"},
		"chat.api_key":                   {"STREAM_API_KEY", "STEAM_API_KEY"},
		"chat.api_secret":                {"STREAM_API_SECRET", "STEAM_API_SECRET"},
		"chat.base_url":                  {"STREAM_BASE_URL"},
		"ai.hf_token":                    {"HF_TOKEN"},
		"ai.huggingface_api_key":         {"HUGGINGFACE_API_KEY"},
		"ai.google_api_key":              {"GOOGLE_API_KEY"},
		"ai.gemini_api_key":              {"GEMINI_API_KEY"},
		"ai.openai_api_key":              {"OPENAI_API_KEY"},
		"ai.voicerss_api_key":            {"VOICERSS_API_KEY"},
		"ai.project_id":                  {"PROJECT_ID"},
		"ai.location":                    {"LOCATION"},
		"ai.credentials_file":            {"GOOGLE_APPLICATION_CREDENTIALS"},
		"jobs.reconcile_schedule":        {"RECONCILE_SCHEDULE"},
		"jobs.reconcile_enabled":         {"RECONCILE_ENABLED"},
	}
	for key, envs := range bindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Security.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.Security.JWTSecret = DevJWTSecret
	}
	if c.Security.TokenTTL <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	if c.Security.RateLimitPerMinute <= 0 {
		return fmt.Errorf("config: rate limit per minute must be positive, got %d", c.Security.RateLimitPerMinute)
	}
	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("config: rate limit burst must be positive, got %d", c.Security.RateLimitBurst)
	}
	return nil
}
