package model

// ================ Config ================

type AssistantModelConfig struct {
	Model       string  `envconfig:"AGENT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"AGENT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"AGENT_TEMPERATURE" default:"0.3"`
}

type EmbeddingConfig struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	TopK  int    `envconfig:"POLICY_TOP_K" default:"2"`
}

type ApprovalConfig struct {
	// AutoApproveSensitive disables the human-approval pause entirely:
	// sensitive tools execute immediately, like safe ones. Meant for
	// unattended deployments.
	AutoApproveSensitive bool `envconfig:"AUTO_APPROVE_SENSITIVE" default:"true"`
}

type ThreadConfig struct {
	TTL string `envconfig:"THREAD_TTL" default:"24h"`

	// MaxContextMessages bounds the transcript slice sent to the chat models.
	// Zero means unbounded.
	MaxContextMessages int `envconfig:"MAX_CONTEXT_MESSAGES" default:"60"`
}

type SessionDefaults struct {
	// PassengerID is used when a turn arrives without one. Empty means the
	// user-info fetch degrades to an empty context instead of failing.
	PassengerID string `envconfig:"DEFAULT_PASSENGER_ID"`
}

type TravelDBConfig struct {
	DSN string `envconfig:"TRAVEL_DB_DSN" default:"travel.db"`
}
