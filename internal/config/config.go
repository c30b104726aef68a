// Package config loads the Screen Teacher configuration from environment
// variables and resolves the Google API key through its source chain.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
)

// Default endpoints of the external translation and speech services. Both are
// overridable from the environment, mainly so tests and proxies can point the
// adapters elsewhere.
const (
	DefaultTranslateEndpoint = "https://translate.googleapis.com/translate_a/single"
	DefaultSpeechEndpoint    = "https://translate.google.com/translate_tts"
)

// Config holds the application configuration parameters.
// Each field corresponds to an expected environment variable.
type Config struct {
	EnvLogsLevel         string // Log level for the application (e.g., DEBUG, INFO)
	EnvLogFileName       string // File name for the rotated log (e.g., ScreenTeacher.log)
	EnvGenerativeName    string // Generative AI provider to use ("gemini", "deepseek" or "openrouter")
	EnvGenerativeModel   string // Model name for the generative AI (e.g., "gemini-2.0-flash")
	EnvBotToken          string // Telegram Bot token (only required by the Telegram frontend)
	EnvTranslateEndpoint string // Endpoint URL for the translation service
	EnvSpeechEndpoint    string // Endpoint URL for the speech synthesis service
	GoogleAPIKey         string // Resolved Google API key (empty when missing or placeholder)
	APIKeySource         string // Human-readable origin of the key, for the status surface
}

// NewConfig initializes a new Config instance by loading environment variables
// from a .env file. A missing .env file is not an error: the variables may
// already be present in the process environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load("teacher.env"); err != nil {
		logrus.Infof("No teacher.env file loaded: %v", err)
	}

	config := &Config{}
	config.EnvLogsLevel = envOr("LOG_LEVEL", "info")
	config.EnvLogFileName = envOr("LOG_FILE_NAME", "ScreenTeacher.log")
	config.EnvGenerativeName = envOr("GENERATIVE_NAME", "gemini")
	config.EnvGenerativeModel = envOr("GENERATIVE_MODEL", "gemini-2.0-flash")
	config.EnvBotToken = os.Getenv("TOKEN_BOT")
	config.EnvTranslateEndpoint = envOr("TRANSLATE_API_ENDPOINT", DefaultTranslateEndpoint)
	config.EnvSpeechEndpoint = envOr("SPEECH_API_ENDPOINT", DefaultSpeechEndpoint)
	config.GoogleAPIKey, config.APIKeySource = ResolveAPIKey()

	return config, nil
}

// ResolveAPIKey looks the Google API key up through the source chain: a
// secrets file, then the process environment, then the compiled-in
// placeholder. The placeholder value is rejected. Returns the key (empty when
// not configured) and a description of its source.
func ResolveAPIKey() (string, string) {
	secretsPath := envOr("SECRETS_FILE", "secrets.env")
	if secrets, err := godotenv.Read(secretsPath); err == nil {
		if key, ok := secrets["GOOGLE_API_KEY"]; ok && key != "" && key != constant.APIKeyPlaceholder {
			return key, "Secrets File"
		}
	}

	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && key != constant.APIKeyPlaceholder {
		return key, "Environment Variable"
	}

	return "", "Not Set"
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
