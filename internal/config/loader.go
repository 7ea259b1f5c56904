package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".asksh"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("ASKSH_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load process env vars from ~/.asksh/env (and fallbacks) first.
	applyEnvFiles()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // Use defaults if we can't find config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If file doesn't exist, continue with defaults

	// Override with environment variables for each group
	envconfig.Process("ASKSH_LLM", &cfg.LLM)
	envconfig.Process("ASKSH_OPENAI", &cfg.Providers.OpenAI)
	envconfig.Process("ASKSH_ANTHROPIC", &cfg.Providers.Anthropic)
	envconfig.Process("ASKSH_OLLAMA", &cfg.Providers.Ollama)
	envconfig.Process("ASKSH_TURN", &cfg.Turn)
	envconfig.Process("ASKSH_LEDGER", &cfg.Ledger)
	envconfig.Process("ASKSH_EXEC", &cfg.Exec)
	envconfig.Process("ASKSH_LANGUAGE", &cfg.Language)
	envconfig.Process("ASKSH_TIMELINE", &cfg.Timeline)
	envconfig.Process("ASKSH_TRACE", &cfg.Trace)
	envconfig.Process("ASKSH_SESSIONS", &cfg.Sessions)

	// Fall back to the conventional provider key variables.
	if cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Providers.Anthropic.APIKey == "" {
		cfg.Providers.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg, nil
}

// applyEnvFiles sets process env vars from the first-match env files:
// ASKSH_ENV_FILE when set, then ~/.config/asksh/env, ~/.asksh/env and
// ~/.asksh/.env. Variables already in the process env always win.
func applyEnvFiles() {
	var candidates []string
	if explicit := strings.TrimSpace(os.Getenv("ASKSH_ENV_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "asksh", "env"),
			filepath.Join(home, ConfigDir, "env"),
			filepath.Join(home, ConfigDir, ".env"),
		)
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		_ = loadEnvFile(p)
	}
}

// Save writes the configuration back to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
