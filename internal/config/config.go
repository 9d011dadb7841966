package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigPath    = "config.toml"
	DefaultHTTPAddr      = ":3000"
	DefaultWhatsAppMode  = "waba"
	DefaultWABABaseURL   = "https://graph.facebook.com/v21.0"
	DefaultWAHABaseURL   = "http://127.0.0.1:3001"
	DefaultWAHASession   = "default"
	DefaultModelPrimary  = "gemini-2.0-flash"
	DefaultModelFallback = "gemini-1.5-flash"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultMediaDir      = "public/media"
	DefaultTimezone      = "America/Sao_Paulo"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
	AI       AIConfig       `toml:"ai"`
	Database DatabaseConfig `toml:"database"`
	Media    MediaConfig    `toml:"media"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type WhatsAppConfig struct {
	// Mode selects the primary transport: "waba" (Meta Cloud API) or "waha".
	Mode         string     `toml:"mode"`
	AllowedPhone string     `toml:"allowed_phone"`
	Timezone     string     `toml:"timezone"`
	WABA         WABAConfig `toml:"waba"`
	WAHA         WAHAConfig `toml:"waha"`
}

type WABAConfig struct {
	BaseURL       string `toml:"base_url"`
	PhoneNumberID string `toml:"phone_number_id"`
	AccessToken   string `toml:"access_token"`
	VerifyToken   string `toml:"verify_token"`
}

type WAHAConfig struct {
	BaseURL string `toml:"base_url"`
	Session string `toml:"session"`
	APIKey  string `toml:"api_key"`
}

type AIConfig struct {
	GeminiAPIKey  string `toml:"gemini_api_key"`
	ModelPrimary  string `toml:"model_primary"`
	ModelFallback string `toml:"model_fallback"`
	OpenAIAPIKey  string `toml:"openai_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	OpenAIModel   string `toml:"openai_model"`
}

type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

type MediaConfig struct {
	Dir     string `toml:"dir"`
	BaseURL string `toml:"base_url"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		WhatsApp: WhatsAppConfig{
			Mode:     DefaultWhatsAppMode,
			Timezone: DefaultTimezone,
			WABA: WABAConfig{
				BaseURL: DefaultWABABaseURL,
			},
			WAHA: WAHAConfig{
				BaseURL: DefaultWAHABaseURL,
				Session: DefaultWAHASession,
			},
		},
		AI: AIConfig{
			ModelPrimary:  DefaultModelPrimary,
			ModelFallback: DefaultModelFallback,
			OpenAIBaseURL: DefaultOpenAIBaseURL,
			OpenAIModel:   DefaultOpenAIModel,
		},
		Media: MediaConfig{
			Dir: DefaultMediaDir,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides secrets and deployment values from the environment.
// A .env file, if present, is loaded first without clobbering real env vars.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	setIfEnv(&cfg.WhatsApp.Mode, "WHATSAPP_MODE")
	setIfEnv(&cfg.WhatsApp.AllowedPhone, "ALLOWED_PHONE")
	setIfEnv(&cfg.WhatsApp.WABA.BaseURL, "WABA_BASE_URL")
	setIfEnv(&cfg.WhatsApp.WABA.PhoneNumberID, "WABA_PHONE_NUMBER_ID")
	setIfEnv(&cfg.WhatsApp.WABA.AccessToken, "WABA_ACCESS_TOKEN")
	setIfEnv(&cfg.WhatsApp.WABA.VerifyToken, "WABA_VERIFY_TOKEN")
	setIfEnv(&cfg.WhatsApp.WAHA.BaseURL, "WAHA_BASE_URL")
	setIfEnv(&cfg.WhatsApp.WAHA.Session, "WAHA_SESSION")
	setIfEnv(&cfg.WhatsApp.WAHA.APIKey, "WAHA_API_KEY")
	setIfEnv(&cfg.AI.GeminiAPIKey, "GEMINI_API_KEY")
	setIfEnv(&cfg.AI.ModelPrimary, "GEMINI_MODEL_PRIMARY")
	setIfEnv(&cfg.AI.ModelFallback, "GEMINI_MODEL_FALLBACK")
	setIfEnv(&cfg.AI.OpenAIAPIKey, "OPENAI_API_KEY")
	setIfEnv(&cfg.AI.OpenAIBaseURL, "OPENAI_BASE_URL")
	setIfEnv(&cfg.AI.OpenAIModel, "OPENAI_MODEL")
	setIfEnv(&cfg.Database.DSN, "DATABASE_URL")
	setIfEnv(&cfg.Media.Dir, "MEDIA_DIR")
	setIfEnv(&cfg.Media.BaseURL, "MEDIA_BASE_URL")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
