package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read on top of the YAML file.
const (
	EnvOpenAIKey        = "OPENAI_API_KEY"
	EnvOpenAIModel      = "OPENAI_MODEL_SUMMARY"
	EnvGeminiKey        = "GEMINI_API_KEY"
	EnvNotionToken      = "NOTION_TOKEN"
	EnvNotionDatabaseID = "NOTION_DATABASE_ID"
	EnvLogLevel         = "LESSON_LOG_LEVEL"
	EnvSessionsDir      = "LESSON_SESSIONS_DIR"
)

// Loader reads the YAML file, the .env file and the process environment, in that order of
// increasing priority. Tests override Lookup to inject a deterministic environment.
type Loader struct {
	Lookup func(string) (string, bool)
	// Optional makes a missing YAML file fall back to defaults instead of failing.
	Optional bool
}

// Load reads configuration from path and validates it.
func (l Loader) Load(path string) (*Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && l.Optional:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	envFile := cfg.Paths.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.Lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	overrideString(lookup, EnvOpenAIKey, &cfg.OpenAI.APIKey)
	overrideString(lookup, EnvOpenAIModel, &cfg.OpenAI.SummaryModel)
	overrideString(lookup, EnvGeminiKey, &cfg.Gemini.APIKey)
	overrideString(lookup, EnvNotionToken, &cfg.Notion.Token)
	overrideString(lookup, EnvNotionDatabaseID, &cfg.Notion.DatabaseID)
	overrideString(lookup, EnvLogLevel, &cfg.Logging.Level)
	overrideString(lookup, EnvSessionsDir, &cfg.Paths.Sessions)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}
