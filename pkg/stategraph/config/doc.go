// Package config loads and reads workflow configuration.
//
// A Config wraps a map[string]any with typed accessors, so node and
// client settings read cleanly regardless of whether they came from a
// YAML file, a JSON file, or the environment:
//
//	cfg, err := config.FromFile("workflow.yaml")
//	if err != nil {
//	    return err
//	}
//
//	model := cfg.String("model", "claude-sonnet")
//	rounds := cfg.Int("max_rounds", 3)
//	timeout := cfg.Duration("timeout", 2*time.Minute)
//
// Every accessor takes a default returned when the key is absent or
// the value has the wrong type, so a partial config never panics.
//
// # Environment
//
// LoadDotenv reads .env files into the process environment, FromEnv
// collects prefixed environment variables into a Config, and
// ExpandEnv substitutes ${VAR} references inside loaded values:
//
//	config.LoadDotenv()
//	cfg := config.FromEnv("EVAL_") // EVAL_MAX_ROUNDS becomes "max_rounds"
package config
