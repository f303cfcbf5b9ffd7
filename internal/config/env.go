package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// SettingsKeys are the variables the dashboards may read and write back to the env file.
var SettingsKeys = []string{
	EnvOpenAIKey,
	EnvOpenAIModel,
	EnvGeminiKey,
	EnvNotionToken,
	EnvNotionDatabaseID,
}

// SecretKeys are masked whenever settings are displayed.
var SecretKeys = map[string]bool{
	EnvOpenAIKey:   true,
	EnvGeminiKey:   true,
	EnvNotionToken: true,
}

// ReadEnv returns the settings currently stored in the env file.
func ReadEnv(path string) (map[string]string, error) {
	values, err := readEnvFile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(SettingsKeys))
	for _, key := range SettingsKeys {
		if v, ok := values[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

// SaveEnv merges updates into the env file. Keys outside SettingsKeys are rejected;
// other lines already in the file are preserved.
func SaveEnv(path string, updates map[string]string) error {
	allowed := make(map[string]bool, len(SettingsKeys))
	for _, key := range SettingsKeys {
		allowed[key] = true
	}

	values, err := readEnvFile(path)
	if err != nil {
		return err
	}
	for key, value := range updates {
		if !allowed[key] {
			return fmt.Errorf("setting %s cannot be changed", key)
		}
		values[key] = strings.TrimSpace(value)
	}

	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write env file %s: %w", path, err)
	}
	return nil
}

// Mask hides all but the last four characters of a secret.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

// Settings returns the in-memory values of SettingsKeys.
func (c *Config) Settings() map[string]string {
	c.settingsMu.RLock()
	defer c.settingsMu.RUnlock()
	return map[string]string{
		EnvOpenAIKey:        c.OpenAI.APIKey,
		EnvOpenAIModel:      c.OpenAI.SummaryModel,
		EnvGeminiKey:        c.Gemini.APIKey,
		EnvNotionToken:      c.Notion.Token,
		EnvNotionDatabaseID: c.Notion.DatabaseID,
	}
}

// ApplySettings copies saved settings into the config so running components see them.
// Empty values leave the current setting unchanged.
func (c *Config) ApplySettings(values map[string]string) {
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()
	targets := map[string]*string{
		EnvOpenAIKey:        &c.OpenAI.APIKey,
		EnvOpenAIModel:      &c.OpenAI.SummaryModel,
		EnvGeminiKey:        &c.Gemini.APIKey,
		EnvNotionToken:      &c.Notion.Token,
		EnvNotionDatabaseID: &c.Notion.DatabaseID,
	}
	for key, value := range values {
		if target, ok := targets[key]; ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
}
