// Package config provides configuration types and loading for asksh.
package config

// Config is the root configuration struct.
// Top-level groups: LLM, Providers, Turn, Ledger, Exec, Language,
// Timeline, Trace, Sessions.
type Config struct {
	LLM       LLMConfig       `json:"llm"`
	Providers ProvidersConfig `json:"providers"`
	Turn      TurnConfig      `json:"turn"`
	Ledger    LedgerConfig    `json:"ledger"`
	Exec      ExecConfig      `json:"exec"`
	Language  LanguageConfig  `json:"language"`
	Timeline  TimelineConfig  `json:"timeline"`
	Trace     TraceConfig     `json:"trace"`
	Sessions  SessionsConfig  `json:"sessions"`
}

// ---------------------------------------------------------------------------
// LLM – model selection and sampling
// ---------------------------------------------------------------------------

// LLMConfig groups LLM selection and sampling settings.
type LLMConfig struct {
	Provider    string  `json:"provider" envconfig:"PROVIDER"`
	Model       string  `json:"model" envconfig:"MODEL"`
	MaxTokens   int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature float64 `json:"temperature" envconfig:"TEMPERATURE"`
}

// ---------------------------------------------------------------------------
// Providers – LLM API keys & endpoints
// ---------------------------------------------------------------------------

// ProvidersConfig contains LLM provider configurations.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `json:"openai"`
	Anthropic ProviderConfig `json:"anthropic"`
	Ollama    ProviderConfig `json:"ollama"`
}

// ProviderConfig contains settings for a single LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
	Model   string `json:"model,omitempty" envconfig:"MODEL"`
}

// ---------------------------------------------------------------------------
// Turn – controller behaviour
// ---------------------------------------------------------------------------

// TurnConfig groups turn controller settings.
type TurnConfig struct {
	// RetryBudget bounds propose/guard cycles within one turn.
	RetryBudget int `json:"retryBudget" envconfig:"RETRY_BUDGET"`
}

// LedgerConfig groups command history ledger settings.
type LedgerConfig struct {
	// Retention caps the number of full records kept in memory per session.
	Retention int `json:"retention" envconfig:"RETENTION"`
}

// ---------------------------------------------------------------------------
// Exec – command execution gateway
// ---------------------------------------------------------------------------

// ExecConfig groups execution gateway settings.
type ExecConfig struct {
	// Mode selects the gateway: "shell" (default) or "tmux".
	Mode           string `json:"mode" envconfig:"MODE"`
	TimeoutSeconds int    `json:"timeoutSeconds" envconfig:"TIMEOUT_SECONDS"`
	WorkDir        string `json:"workDir,omitempty" envconfig:"WORK_DIR"`
	TmuxSession    string `json:"tmuxSession" envconfig:"TMUX_SESSION"`
	// AutoApprove skips the interactive confirmation for commands the
	// analyser flags. Off by default.
	AutoApprove bool `json:"autoApprove" envconfig:"AUTO_APPROVE"`
}

// LanguageConfig groups reply language settings.
type LanguageConfig struct {
	// Default is a BCP-47 tag used when detection cannot decide.
	Default string `json:"default" envconfig:"DEFAULT"`
}

// TimelineConfig groups the sqlite audit timeline settings.
type TimelineConfig struct {
	Path string `json:"path,omitempty" envconfig:"PATH"`
}

// TraceConfig groups the optional Kafka trace publisher settings.
// Publishing is disabled unless brokers are set.
type TraceConfig struct {
	Brokers []string `json:"brokers,omitempty" envconfig:"BROKERS"`
	Topic   string   `json:"topic" envconfig:"TOPIC"`
}

// SessionsConfig groups conversation session persistence settings.
type SessionsConfig struct {
	Dir string `json:"dir,omitempty" envconfig:"DIR"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			MaxTokens:   2048,
			Temperature: 0.2,
		},
		Turn: TurnConfig{
			RetryBudget: 3,
		},
		Ledger: LedgerConfig{
			Retention: 512,
		},
		Exec: ExecConfig{
			Mode:           "shell",
			TimeoutSeconds: 60,
			TmuxSession:    "asksh",
		},
		Language: LanguageConfig{
			Default: "en",
		},
		Trace: TraceConfig{
			Topic: "asksh.trace",
		},
	}
}
