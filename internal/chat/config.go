package chat

// Config holds chat settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	Compactor   CompactorConfig
}

// CompactorConfig holds history compaction settings.
type CompactorConfig struct {
	DigestMaxTokens int
	Temperature     float64
}

// DefaultConfig returns sensible defaults for tutor chat.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.6,
		Compactor:   DefaultCompactorConfig(),
	}
}

// DefaultCompactorConfig returns sensible defaults for compaction.
func DefaultCompactorConfig() CompactorConfig {
	return CompactorConfig{
		DigestMaxTokens: 256,
		Temperature:     0.2,
	}
}
