package config

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is matched by every CredentialError.
var ErrMissingCredential = errors.New("missing credential")

// CredentialError reports a credential that a selected cloud path needs but is not set.
type CredentialError struct {
	Variable string
	Purpose  string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set (required for %s)", e.Variable, e.Purpose)
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// RequireCredentials checks the credentials needed by the selected engine, summary provider
// and, when publish is set, the notes service. Nothing is checked for local-only paths.
func (c *Config) RequireCredentials(engine, provider string, publish bool) error {
	svc := c.Services()
	if engine == EngineCloud && svc.OpenAI.APIKey == "" {
		return &CredentialError{Variable: "OPENAI_API_KEY", Purpose: "cloud transcription"}
	}

	switch provider {
	case ProviderOpenAI:
		if svc.OpenAI.APIKey == "" {
			return &CredentialError{Variable: "OPENAI_API_KEY", Purpose: "summary generation"}
		}
	case ProviderGemini:
		if svc.Gemini.APIKey == "" {
			return &CredentialError{Variable: "GEMINI_API_KEY", Purpose: "summary generation"}
		}
	}

	if publish {
		return requireNotion(svc.Notion)
	}
	return nil
}

// RequireNotion checks the Notion token and target database.
func (c *Config) RequireNotion() error {
	return requireNotion(c.Services().Notion)
}

func requireNotion(n NotionConfig) error {
	if n.Token == "" {
		return &CredentialError{Variable: "NOTION_TOKEN", Purpose: "publishing to Notion"}
	}
	if n.DatabaseID == "" {
		return &CredentialError{Variable: "NOTION_DATABASE_ID", Purpose: "publishing to Notion"}
	}
	return nil
}
