package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/randalmurphal/stategraph/pkg/stategraph/template"
)

// LoadDotenv loads .env files into the process environment. Missing
// files are ignored so a checked-in default and an optional local
// override can both be listed. Existing environment variables are
// never overwritten.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// FromEnv builds a Config from environment variables sharing a prefix.
// The prefix is stripped and the remainder lowercased, so with prefix
// "APP_" the variable APP_MAX_TOKENS becomes key "max_tokens".
func FromEnv(prefix string) Config {
	data := make(map[string]any)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		if name == "" {
			continue
		}
		data[name] = value
	}
	return New(data)
}

// ExpandEnv returns a copy of the Config with ${VAR} and $VAR patterns
// in string values replaced by environment variables. Unset variables
// expand to the empty string.
func (c Config) ExpandEnv() Config {
	vars := make(map[string]any)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			vars[key] = value
		}
	}

	exp := template.NewExpander(template.WithMissingAction(template.MissingEmpty))
	expanded, _ := exp.ExpandMap(c.data, vars)
	return New(expanded)
}
