package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

var (
	knownDrivers   = map[string]bool{"postgres": true, "sqlite": true}
	knownProviders = map[string]bool{"deepseek": true, "gemini": true}
)

// Validate checks the configuration against the requirements of its environment
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", "must be between 1 and 65535")
	}
	if !knownDrivers[c.Database.Driver] {
		add("database.driver", fmt.Sprintf("unknown driver %q", c.Database.Driver))
	}
	if c.Database.Name == "" {
		add("database.name", "is required")
	}
	if !knownProviders[c.LLM.DefaultProvider] {
		add("llm.default_provider", fmt.Sprintf("unknown provider %q", c.LLM.DefaultProvider))
	}
	if c.Storage.Bucket == "" {
		add("storage.bucket", "is required")
	}
	if c.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "is required")
	}

	if c.Environment.IsProduction() {
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			add("database.password", "db_password secret is required in production")
		}
		if c.Auth.JWTSecret == devJWTSecret {
			add("auth.jwt_secret", "development secret must not be used in production")
		}
		if c.defaultProvider().APIKey == "" {
			add("llm."+c.LLM.DefaultProvider+".api_key", "API key for the default provider is required in production")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) defaultProvider() ProviderConfig {
	if c.LLM.DefaultProvider == "gemini" {
		return c.LLM.Gemini
	}
	return c.LLM.DeepSeek
}
